// Package extract turns uploaded documents into quiz source text.
//
// Real PDF parsing and OCR are not wired in yet; each kind yields fixed
// placeholder text so the rest of the flow can be exercised end to end.
package extract

import (
	"errors"
	"path/filepath"
	"strings"
)

// Kind is the upload category chosen by the user.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 10 << 20

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrNoText          = errors.New("no text extracted")
	ErrTooLarge        = errors.New("file too large")
)

const (
	pdfPlaceholder   = "Sample text extracted from PDF. This would contain the actual PDF content when integrated with pdfjs-dist library."
	imagePlaceholder = "Sample text extracted from image. This would contain the actual OCR results when integrated with tesseract.js library."
)

// Result is the extracted source text and a suggested quiz title.
type Result struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Extract checks the upload against kind and returns its text. Empty files
// fail with ErrNoText.
func Extract(kind Kind, filename, contentType string, size int64) (Result, error) {
	if size > MaxFileSize {
		return Result{}, ErrTooLarge
	}

	var text string
	switch {
	case kind == KindPDF && contentType == "application/pdf":
		text = pdfPlaceholder
	case kind == KindImage && strings.HasPrefix(contentType, "image/"):
		text = imagePlaceholder
	default:
		return Result{}, ErrInvalidFileType
	}
	// An empty upload has nothing to read, placeholder or not.
	if size == 0 {
		return Result{}, ErrNoText
	}
	return Result{Title: Title(filename), Text: text}, nil
}

// Title strips the last extension from filename.
func Title(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "." {
		return filename
	}
	return strings.TrimSuffix(filename, ext)
}
