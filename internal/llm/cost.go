// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"fmt"

	"github.com/pdiddy/lectern/pkg/types"
)

// Rough per-page cost in USD for one vision call. Actual billing varies
// with image size and output length; these are order-of-magnitude figures
// for the pre-run estimate.
var costPerPage = map[types.Provider]float64{
	types.ProviderOpenAI: 0.03,
	types.ProviderClaude: 0.025,
	types.ProviderGemini: 0.002,
}

// EstimateCost returns the rough USD cost of processing the given number of
// pages with the provider.
func EstimateCost(pages int, provider types.Provider) float64 {
	rate, ok := costPerPage[provider]
	if !ok {
		rate = 0.02
	}
	return float64(pages) * rate
}

// FormatCost renders an estimate for display.
func FormatCost(usd float64) string {
	return fmt.Sprintf("~$%.2f USD", usd)
}
