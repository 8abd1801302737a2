package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Well-known tesseract install locations checked after PATH lookup fails.
var tesseractLocations = []string{
	"/usr/bin/tesseract",
	"/usr/local/bin/tesseract",
	"/opt/homebrew/bin/tesseract",
	`C:\Program Files\Tesseract-OCR\tesseract.exe`,
}

// FindTesseract resolves the tesseract binary. An explicit override wins,
// then the TESSERACT_CMD environment variable, then PATH, then well-known
// install locations.
func FindTesseract(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv("TESSERACT_CMD"); env != "" {
		return env, nil
	}
	if path, err := exec.LookPath("tesseract"); err == nil {
		return path, nil
	}
	for _, loc := range tesseractLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	return "", fmt.Errorf("tesseract binary not found: install it or set TESSERACT_CMD")
}

// OCRImage runs tesseract on an image file and returns the recognized text.
// cmd is the resolved binary path from FindTesseract.
func OCRImage(ctx context.Context, cmd, imagePath string) (string, error) {
	var stdout, stderr bytes.Buffer

	// "-" sends the recognized text to stdout instead of a file.
	c := exec.CommandContext(ctx, cmd, imagePath, "-", "--oem", "3", "--psm", "6", "-l", "eng")
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("tesseract failed: %s: %w", msg, err)
		}
		return "", fmt.Errorf("tesseract failed: %w", err)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("tesseract produced no text for %s", imagePath)
	}
	return text, nil
}
