package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"

	"github.com/nfnt/resize"
	"github.com/otiai10/gosseract"
)

// upscale makes small HUD glyphs large enough for tesseract.
const upscale = 2

// Tesseract recognizes text with a single long lived tesseract client.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract points tesseract at tessdataPath when set.
func NewTesseract(tessdataPath string) (*Tesseract, error) {
	if tessdataPath != "" {
		if err := os.Setenv("TESSDATA_PREFIX", tessdataPath); err != nil {
			return nil, fmt.Errorf("setting TESSDATA_PREFIX: %w", err)
		}
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("loading tesseract language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting page segmentation mode: %w", err)
	}

	return &Tesseract{client: client}, nil
}

// Recognize returns the lowercase text in img.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b := img.Bounds()
	scaled := resize.Resize(uint(b.Dx()*upscale), uint(b.Dy()*upscale), img, resize.Bicubic)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("encoding ocr input: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("loading ocr input: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("running ocr: %w", err)
	}

	return strings.ToLower(text), nil
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
