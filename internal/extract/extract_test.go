package extract

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestSanitizePDF(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "trailing garbage removed",
			in:   "%PDF-1.4 body %%EOF\n<html>lots of appended garbage</html>",
			want: "%PDF-1.4 body %%EOF\n",
		},
		{
			name: "clean pdf unchanged",
			in:   "%PDF-1.4 body %%EOF\n",
			want: "%PDF-1.4 body %%EOF\n",
		},
		{
			name: "not a pdf unchanged",
			in:   "plain text file",
			want: "plain text file",
		},
		{
			name: "no eof marker unchanged",
			in:   "%PDF-1.4 truncated body",
			want: "%PDF-1.4 truncated body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizePDF([]byte(tt.in))
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("sanitizePDF() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFText_Invalid(t *testing.T) {
	if _, err := PDFText(nil); err == nil {
		t.Error("PDFText(nil) should fail")
	}
	if _, err := PDFText([]byte("not a pdf at all")); err == nil {
		t.Error("PDFText() should fail for non-PDF bytes")
	}
}

func TestFromFile_Txt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.txt")
	// The ligature and fullwidth digit should NFKC-normalize to plain forms.
	if err := os.WriteFile(path, []byte("1. Deﬁne the OSI model with ７ layers."), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := New("").FromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if !strings.Contains(text, "Define") {
		t.Errorf("text = %q, ligature not normalized", text)
	}
	if !strings.Contains(text, "7 layers") {
		t.Errorf("text = %q, fullwidth digit not normalized", text)
	}
}

func TestFromFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.docx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New("").FromFile(context.Background(), path); err == nil {
		t.Fatal("FromFile() should reject unsupported extensions")
	}
}

func TestFindTesseract_Override(t *testing.T) {
	cmd, err := FindTesseract("/custom/tesseract")
	if err != nil {
		t.Fatalf("FindTesseract() error = %v", err)
	}
	if cmd != "/custom/tesseract" {
		t.Errorf("cmd = %q, want override to win", cmd)
	}
}

func TestFindTesseract_Env(t *testing.T) {
	t.Setenv("TESSERACT_CMD", "/env/tesseract")

	cmd, err := FindTesseract("")
	if err != nil {
		t.Fatalf("FindTesseract() error = %v", err)
	}
	if cmd != "/env/tesseract" {
		t.Errorf("cmd = %q, want env var to win", cmd)
	}
}

func TestOCRImage_Stub(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub script requires a POSIX shell")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "tesseract")
	script := "#!/bin/sh\necho \"1. Define the OSI model.\"\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	text, err := OCRImage(context.Background(), stub, filepath.Join(dir, "scan.png"))
	if err != nil {
		t.Fatalf("OCRImage() error = %v", err)
	}
	if text != "1. Define the OSI model." {
		t.Errorf("text = %q, want stub output", text)
	}
}

func TestOCRImage_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub script requires a POSIX shell")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "tesseract")
	script := "#!/bin/sh\necho \"cannot open image\" >&2\nexit 1\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := OCRImage(context.Background(), stub, filepath.Join(dir, "scan.png"))
	if err == nil {
		t.Fatal("OCRImage() should surface tesseract failures")
	}
	if !strings.Contains(err.Error(), "cannot open image") {
		t.Errorf("error = %v, want it to carry stderr", err)
	}
}
