// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes PDF pages into images using MuPDF via go-fitz.
package render

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"github.com/pdiddy/lectern/pkg/types"
)

// Renderer rasterizes pages of one open document. Implementations must be
// safe to call from a single goroutine; the pipeline serializes access.
type Renderer interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// RenderPage rasterizes the 1-based page n at the given DPI.
	RenderPage(n, dpi int) (image.Image, error)

	// PageText extracts the text of the 1-based page n. Best effort; an
	// empty string is a valid result for image-only pages.
	PageText(n int) (string, error)

	// Close releases the underlying document.
	Close() error
}

// FitzRenderer renders pages with go-fitz (MuPDF).
type FitzRenderer struct {
	doc *fitz.Document
}

// Open opens a PDF document for rendering. Unreadable or unparsable files
// return an error wrapping types.ErrDocumentUnreadable.
func Open(path string) (*FitzRenderer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrDocumentUnreadable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", types.ErrDocumentUnreadable, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", types.ErrDocumentUnreadable, path)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrDocumentUnreadable, path, err)
	}
	return &FitzRenderer{doc: doc}, nil
}

// PageCount returns the number of pages in the document.
func (r *FitzRenderer) PageCount() int {
	return r.doc.NumPage()
}

// RenderPage rasterizes page n (1-based) at the given DPI.
func (r *FitzRenderer) RenderPage(n, dpi int) (image.Image, error) {
	if n < 1 || n > r.doc.NumPage() {
		return nil, fmt.Errorf("%w: page %d out of bounds (document has %d pages)",
			types.ErrPageRangeInvalid, n, r.doc.NumPage())
	}
	// go-fitz uses 0-based page indices.
	img, err := r.doc.ImageDPI(n-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", n, err)
	}
	return img, nil
}

// PageText extracts the text content of page n (1-based).
func (r *FitzRenderer) PageText(n int) (string, error) {
	if n < 1 || n > r.doc.NumPage() {
		return "", fmt.Errorf("%w: page %d out of bounds (document has %d pages)",
			types.ErrPageRangeInvalid, n, r.doc.NumPage())
	}
	text, err := r.doc.Text(n - 1)
	if err != nil {
		return "", fmt.Errorf("extracting text for page %d: %w", n, err)
	}
	return text, nil
}

// Close releases the underlying document.
func (r *FitzRenderer) Close() error {
	return r.doc.Close()
}

// Encode serializes a rendered page image as PNG or JPEG. JPEG encoding
// honors the quality setting; PNG ignores it.
func Encode(img image.Image, format string, jpegQuality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encoding PNG: %w", err)
		}
	case "jpg":
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return nil, fmt.Errorf("encoding JPEG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	return buf.Bytes(), nil
}

// ImageFileName returns the canonical file name for a rendered page:
// page_0001.png, page_0002.jpg, and so on.
func ImageFileName(page int, format string) string {
	return fmt.Sprintf("page_%04d.%s", page, format)
}

// SaveImage persists encoded image bytes under dir with the canonical page
// file name and returns the full path. The directory is created if missing.
func SaveImage(dir string, page int, data []byte, format string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating images directory: %w", err)
	}
	path := filepath.Join(dir, ImageFileName(page, format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing page image: %w", err)
	}
	return path, nil
}
