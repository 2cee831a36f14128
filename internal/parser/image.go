package parser

import (
	"fmt"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

// ImageParser handles standalone raster uploads: a single region on page 1
// with no document text.
type ImageParser struct{}

func (p *ImageParser) Parse(r io.Reader, filename string) (*Source, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return &Source{
		Name:       filename,
		TotalPages: 1,
		Regions: []Region{
			{ID: regionID(1, 1), Page: 1, Img: img},
		},
	}, nil
}

// regionID builds a unique, readable region identifier.
func regionID(page, index int) string {
	return fmt.Sprintf("img_%d_%d_%s", page, index, uuid.NewString()[:8])
}
