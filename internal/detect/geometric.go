package detect

import (
	"bytes"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Chart type labels. The geometric classifier only emits Chart, Graph, Table
// and Image; the finer-grained labels come from object-detection output.
const (
	TypeBarChart  = "bar_chart"
	TypeLineGraph = "line_graph"
	TypePieChart  = "pie_chart"
	TypeTable     = "table"
	TypeChart     = "chart"
	TypeGraph     = "graph"
	TypeImage     = "image"
)

// Classifier thresholds. Empirically tuned, not derived; the test suite
// pins the decision boundaries.
const (
	// DownsampleSize is the square grid side used for color counting.
	DownsampleSize = 100
	// ChartColorLimit and GraphColorLimit bound the distinct-color counts
	// below which an image is considered chart-like.
	ChartColorLimit = 50
	GraphColorLimit = 100
	// EdgeThreshold is the grayscale first-difference magnitude above which
	// a pixel counts as an edge.
	EdgeThreshold = 50.0
	// EdgeDensityLimit is the edge fraction above which, in both directions,
	// an image is considered table-like.
	EdgeDensityLimit = 0.05
)

// Detection is a single object-detection hit.
type Detection struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

// Verdict is the chart/non-chart decision for one image region.
type Verdict struct {
	IsChart       bool        `json:"is_chart"`
	ChartType     string      `json:"chart_type"`
	Confidence    float64     `json:"confidence"`
	RawDetections []Detection `json:"detections"`
}

// Classify decides whether an image looks like a chart using pixel
// statistics alone: distinct-color count on a downsampled grid, aspect
// ratio, and grayscale edge density along each axis.
//
// Rules are evaluated in order and later rules override earlier ones:
//  1. default: not a chart ("image", 0.3)
//  2. <50 colors and aspect in (0.5, 2.5): "chart", 0.6
//  3. else <100 colors and aspect in (0.3, 3.0): "graph", 0.5
//  4. both edge densities >0.05: "table", 0.7 (overrides 1-3)
func Classify(img image.Image) Verdict {
	v := Verdict{IsChart: false, ChartType: TypeImage, Confidence: 0.3}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Verdict{ChartType: TypeImage, Confidence: 0.0}
	}

	aspect := float64(w) / float64(h)
	colors := distinctColors(img)

	if colors < ChartColorLimit && aspect > 0.5 && aspect < 2.5 {
		v = Verdict{IsChart: true, ChartType: TypeChart, Confidence: 0.6}
	} else if colors < GraphColorLimit && aspect > 0.3 && aspect < 3.0 {
		v = Verdict{IsChart: true, ChartType: TypeGraph, Confidence: 0.5}
	}

	hDensity, vDensity := edgeDensities(img)
	if hDensity > EdgeDensityLimit && vDensity > EdgeDensityLimit {
		v = Verdict{IsChart: true, ChartType: TypeTable, Confidence: 0.7}
	}

	return v
}

// ClassifyBytes decodes and classifies raw image bytes. A decode failure
// yields the fully-default verdict with zero confidence, never an error.
func ClassifyBytes(data []byte) Verdict {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Verdict{IsChart: false, ChartType: TypeImage, Confidence: 0.0}
	}
	return Classify(img)
}

// distinctColors counts distinct RGB triples after nearest-neighbor
// downsampling to DownsampleSize x DownsampleSize.
func distinctColors(img image.Image) int {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	seen := make(map[uint32]struct{}, 1024)
	for gy := 0; gy < DownsampleSize; gy++ {
		sy := b.Min.Y + gy*h/DownsampleSize
		for gx := 0; gx < DownsampleSize; gx++ {
			sx := b.Min.X + gx*w/DownsampleSize
			r, g, bl, _ := img.At(sx, sy).RGBA()
			key := (r>>8)<<16 | (g>>8)<<8 | bl>>8
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}

// edgeDensities returns the fraction of pixels whose grayscale
// first-difference exceeds EdgeThreshold, taken along the vertical axis
// (horizontal line structure) and the horizontal axis (vertical line
// structure) respectively.
func edgeDensities(img image.Image) (horizontal, vertical float64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 2 || h < 2 {
		return 0, 0
	}

	gray := make([][]float64, h)
	for y := 0; y < h; y++ {
		gray[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			gray[y][x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
		}
	}

	hEdges := 0
	for y := 1; y < h; y++ {
		for x := 0; x < w; x++ {
			if diff := gray[y][x] - gray[y-1][x]; diff > EdgeThreshold || diff < -EdgeThreshold {
				hEdges++
			}
		}
	}
	vEdges := 0
	for y := 0; y < h; y++ {
		for x := 1; x < w; x++ {
			if diff := gray[y][x] - gray[y][x-1]; diff > EdgeThreshold || diff < -EdgeThreshold {
				vEdges++
			}
		}
	}

	horizontal = float64(hEdges) / float64((h-1)*w)
	vertical = float64(vEdges) / float64(h*(w-1))
	return horizontal, vertical
}
