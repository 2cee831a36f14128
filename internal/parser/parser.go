package parser

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
)

// Region is one sub-image extracted from a source, to be considered for
// chart classification.
type Region struct {
	ID   string
	Page int
	Img  image.Image
}

// Source is the parsed content of an uploaded file: the document text used
// as insight context, plus the image regions to analyze.
type Source struct {
	Name       string
	TotalPages int
	Text       string
	Regions    []Region
}

// Parser converts raw upload bytes into a Source.
type Parser interface {
	Parse(r io.Reader, filename string) (*Source, error)
}

// ImageExtensions are the raster formats accepted for standalone uploads.
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// DocumentExtensions are the text formats accepted as context-only sources.
var DocumentExtensions = map[string]bool{
	".docx":     true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".txt":      true,
}

// SupportedExtensions lists every file extension this service can handle.
var SupportedExtensions = func() map[string]bool {
	m := map[string]bool{".pdf": true}
	for ext := range ImageExtensions {
		m[ext] = true
	}
	for ext := range DocumentExtensions {
		m[ext] = true
	}
	return m
}()

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pdf":
		return &PDFParser{}, nil
	case ImageExtensions[ext]:
		return &ImageParser{}, nil
	case ext == ".docx":
		return &DOCXParser{}, nil
	case ext == ".md" || ext == ".markdown":
		return &MarkdownParser{}, nil
	case ext == ".csv":
		return &CSVParser{}, nil
	case ext == ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}
