// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/lectern/pkg/types"
)

// HTMLFileName is the HTML document written to the output directory.
const HTMLFileName = "lecture_explained.html"

var htmlTmpl = template.Must(template.New("lecture").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Lecture Notes: {{.Title}}</title>
<style>
body { max-width: 60em; margin: 2em auto; font-family: sans-serif; line-height: 1.5; }
img { max-width: 100%; border: 1px solid #ccc; }
.failed { color: #a00; font-weight: bold; }
section { border-top: 1px solid #ddd; margin-top: 2em; padding-top: 1em; }
</style>
</head>
<body>
<h1>Lecture Notes: {{.Title}}</h1>
<p>Generated with {{.Provider}} ({{.Model}}), {{len .Pages}} page(s) processed.</p>
{{range .Pages}}<section>
<h2>Page {{.Page}}</h2>
{{if .ImagePath}}<p><img src="{{.ImagePath}}" alt="Page {{.Page}}"></p>{{end}}
{{if .Failed}}<p class="failed">Analysis failed: {{.Err}}</p>{{else}}<div>{{.Explanation}}</div>{{end}}
</section>
{{end}}</body>
</html>
`))

type htmlPage struct {
	Page        int
	ImagePath   string
	Explanation string
	Failed      bool
	Err         string
}

type htmlDoc struct {
	Title    string
	Provider types.Provider
	Model    string
	Pages    []htmlPage
}

// WriteHTML renders the results into outDir/lecture_explained.html, one
// section per page in ascending page order, and returns the file path.
func WriteHTML(outDir string, job types.Job, results []types.ExplanationResult) (string, error) {
	ordered := make([]types.ExplanationResult, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Page < ordered[j].Page })

	doc := htmlDoc{
		Title:    filepath.Base(job.Document.Path),
		Provider: job.Provider,
		Model:    job.Model,
	}
	for _, r := range ordered {
		doc.Pages = append(doc.Pages, htmlPage{
			Page:        r.Page,
			ImagePath:   filepath.ToSlash(r.ImagePath),
			Explanation: strings.TrimSpace(r.Explanation),
			Failed:      !r.Status.Succeeded(),
			Err:         r.Err,
		})
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, HTMLFileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", HTMLFileName, err)
	}
	defer f.Close()

	if err := htmlTmpl.Execute(f, doc); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return path, nil
}
