// Package extract turns uploaded question-paper and syllabus files into
// plain text: digital PDFs via embedded text extraction, images via the
// tesseract OCR binary, and text formats verbatim.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Extractor converts files to plain text.
type Extractor struct {
	tesseractCmd string
}

// New creates an extractor. tesseractOverride is an optional explicit path
// to the tesseract binary; empty means resolve it lazily on first image.
func New(tesseractOverride string) *Extractor {
	return &Extractor{tesseractCmd: tesseractOverride}
}

// FromFile extracts text from the file based on its extension. Supported:
// .pdf, .png, .jpg, .jpeg, .txt. The output is NFKC-normalized.
func (e *Extractor) FromFile(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		var content []byte
		content, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		text, err = PDFText(content)
	case ".png", ".jpg", ".jpeg":
		var cmd string
		cmd, err = FindTesseract(e.tesseractCmd)
		if err != nil {
			return "", err
		}
		text, err = OCRImage(ctx, cmd, path)
	case ".txt":
		var content []byte
		content, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		text = string(content)
	default:
		return "", fmt.Errorf("unsupported file type %q: want .pdf, .png, .jpg, .jpeg, or .txt", ext)
	}
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}

	slog.Debug("extracted text", "file", path, "chars", len(text))
	return norm.NFKC.String(text), nil
}
