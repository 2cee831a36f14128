package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractLocalizer localizes text with a local Tesseract installation.
// It parses hOCR output to recover per-line bounding boxes and confidences.
type TesseractLocalizer struct {
	languages []string
}

func NewTesseractLocalizer(languages ...string) *TesseractLocalizer {
	return &TesseractLocalizer{languages: languages}
}

// Localize runs Tesseract over the image. Tesseract itself cannot be
// interrupted mid-run, so the context is only checked up front.
func (t *TesseractLocalizer) Localize(ctx context.Context, img image.Image) ([]TextBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	hocr, err := client.HOCRText()
	if err != nil {
		return nil, fmt.Errorf("tesseract hocr: %w", err)
	}

	boxes, err := parseHOCR([]byte(hocr))
	if err != nil {
		return nil, fmt.Errorf("parse hocr: %w", err)
	}
	return boxes, nil
}
