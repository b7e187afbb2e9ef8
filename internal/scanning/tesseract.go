package scanning

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Tesseract implements TextReader by shelling out to the tesseract binary.
type Tesseract struct {
	binary   string
	language string
}

// NewTesseract checks that the binary is on PATH
func NewTesseract(binary, language string) (*Tesseract, error) {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("finding tesseract binary: %w", err)
	}
	return &Tesseract{binary: path, language: language}, nil
}

// Name identifies the reader
func (t *Tesseract) Name() string {
	return "tesseract:" + t.language
}

// ReadText runs tesseract over each rendered page
func (t *Tesseract) ReadText(ctx context.Context, imageData []byte, contentType string) (*OCRResult, error) {
	pages, err := renderPages(imageData, contentType)
	if err != nil {
		return nil, err
	}

	var texts []string
	for i, page := range pages {
		text, err := t.readPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return &OCRResult{Text: strings.Join(texts, "\n")}, nil
}

func (t *Tesseract) readPage(ctx context.Context, page []byte) (string, error) {
	f, err := os.CreateTemp("", "docscan-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(page); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, f.Name(), "stdout", "-l", t.language)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("running tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}
