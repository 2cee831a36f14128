package ocr

import (
	"context"
	"image"
	"log/slog"
	"time"
)

// Extractor wraps the optional text-localization capability and structures
// whatever text it finds.
type Extractor struct {
	localizer Localizer
	timeout   time.Duration
	log       *slog.Logger
}

func NewExtractor(localizer Localizer, timeout time.Duration, log *slog.Logger) *Extractor {
	return &Extractor{localizer: localizer, timeout: timeout, log: log}
}

// Extract localizes and structures the text in an image region. If the
// capability is absent, fails, or finds nothing, the result is the all-empty
// structure, never an error.
func (e *Extractor) Extract(ctx context.Context, img image.Image) Extracted {
	if e.localizer == nil {
		return emptyExtracted()
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	boxes, err := e.localizer.Localize(ctx, img)
	if err != nil {
		e.log.Warn("text localization failed", "error", err)
		return emptyExtracted()
	}
	if len(boxes) == 0 {
		return emptyExtracted()
	}

	raw := make([]string, 0, len(boxes))
	for _, b := range boxes {
		raw = append(raw, b.Text)
	}

	return Extracted{
		RawText:    raw,
		Boxes:      boxes,
		Structured: Structure(boxes),
	}
}
