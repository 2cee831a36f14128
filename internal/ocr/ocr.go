package ocr

import (
	"context"
	"image"
)

// TextBox is one localized text fragment: the recognized text, the
// recognizer's confidence, and the quadrilateral bounding box with its
// precomputed center.
type TextBox struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	BBox       [4][2]float64 `json:"bbox"`
	XCenter    float64       `json:"x_center"`
	YCenter    float64       `json:"y_center"`
}

// StructuredText is the positional interpretation of a chart's text:
// title, axis labels, numeric values and legend entries.
type StructuredText struct {
	Title   *string  `json:"title"`
	XAxis   *string  `json:"x_axis"`
	YAxis   *string  `json:"y_axis"`
	Values  []string `json:"values"`
	Legends []string `json:"legends"`
}

// Extracted is the full output of one OCR pass over an image region.
type Extracted struct {
	RawText    []string       `json:"raw_text"`
	Boxes      []TextBox      `json:"boxes"`
	Structured StructuredText `json:"structured"`
}

// Localizer is an optional text-localization capability. A nil Localizer
// means the capability is absent.
type Localizer interface {
	Localize(ctx context.Context, img image.Image) ([]TextBox, error)
}

func emptyStructured() StructuredText {
	return StructuredText{Values: []string{}, Legends: []string{}}
}

func emptyExtracted() Extracted {
	return Extracted{
		RawText:    []string{},
		Boxes:      []TextBox{},
		Structured: emptyStructured(),
	}
}
