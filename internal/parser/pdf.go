package parser

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts per-page text and embedded raster images from PDF
// files. Text comes from the Go library with an optional pdftotext
// fallback; image regions are the DCT-encoded (JPEG) XObject streams.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "chartsight-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		if p.FallbackPdftotext {
			return p.parseWithPdftotext(tmpPath, filename)
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	src := &Source{
		Name:       filename,
		TotalPages: reader.NumPage(),
		Text:       extractPageText(reader),
		Regions:    jpegRegions(data, collectImageDims(reader)),
	}
	return src, nil
}

// extractPageText concatenates the plain text of all pages, each prefixed
// with a page marker. Pages that fail to extract are skipped.
func extractPageText(reader *pdflib.Reader) string {
	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i, text))
	}
	return strings.Join(parts, "\n\n")
}

// imageDim records the declared size and page of an image XObject, used to
// attribute scanned JPEG streams back to their page.
type imageDim struct {
	width, height int64
	page          int
}

func collectImageDims(reader *pdflib.Reader) []imageDim {
	var dims []imageDim
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		xobjects := page.V.Key("Resources").Key("XObject")
		for _, name := range xobjects.Keys() {
			obj := xobjects.Key(name)
			if obj.Key("Subtype").Name() != "Image" {
				continue
			}
			dims = append(dims, imageDim{
				width:  obj.Key("Width").Int64(),
				height: obj.Key("Height").Int64(),
				page:   i,
			})
		}
	}
	return dims
}

var (
	dctMarker      = []byte("/DCTDecode")
	streamKeyword  = []byte("stream")
	endstreamToken = []byte("endstream")
)

// jpegRegions scans the raw PDF for DCT-encoded streams and decodes them.
// The PDF library's stream reader does not handle DCTDecode, so the JPEG
// payloads are located directly between stream/endstream markers. Each
// decoded image is attributed to a page by matching its dimensions against
// the declared image XObjects; unmatched images fall back to page 1.
func jpegRegions(data []byte, dims []imageDim) []Region {
	var regions []Region
	used := make([]bool, len(dims))
	perPage := make(map[int]int)

	pos := 0
	for {
		i := bytes.Index(data[pos:], dctMarker)
		if i < 0 {
			break
		}
		cursor := pos + i + len(dctMarker)

		s := bytes.Index(data[cursor:], streamKeyword)
		if s < 0 {
			break
		}
		start := cursor + s + len(streamKeyword)
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		e := bytes.Index(data[start:], endstreamToken)
		if e < 0 {
			break
		}
		payload := bytes.TrimRight(data[start:start+e], "\r\n")
		pos = start + e + len(endstreamToken)

		img, err := jpeg.Decode(bytes.NewReader(payload))
		if err != nil {
			continue
		}

		page := matchPage(img.Bounds(), dims, used)
		perPage[page]++
		regions = append(regions, Region{
			ID:   regionID(page, perPage[page]),
			Page: page,
			Img:  img,
		})
	}
	return regions
}

func matchPage(bounds image.Rectangle, dims []imageDim, used []bool) int {
	w, h := int64(bounds.Dx()), int64(bounds.Dy())
	for i, d := range dims {
		if !used[i] && d.width == w && d.height == h {
			used[i] = true
			return d.page
		}
	}
	return 1
}

// parseWithPdftotext extracts text via the pdftotext binary when the Go
// library cannot open the file. No image regions are recovered on this path.
func (p *PDFParser) parseWithPdftotext(path, filename string) (*Source, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	pages := strings.Split(string(out), "\f")
	var parts []string
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i+1, page))
	}

	return &Source{
		Name:       filename,
		TotalPages: len(pages),
		Text:       strings.Join(parts, "\n\n"),
	}, nil
}
