package ocr

import (
	"math"
	"testing"
)

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<html>
 <body>
  <div class='ocr_page' title='bbox 0 0 800 600'>
   <div class='ocr_carea'>
    <p class='ocr_par'>
     <span class='ocr_line' title='bbox 100 20 700 60; baseline 0 -6'>
      <span class='ocrx_word' title='bbox 100 20 300 60; x_wconf 90'>Quarterly</span>
      <span class='ocrx_word' title='bbox 320 20 700 60; x_wconf 80'>Revenue</span>
     </span>
     <span class='ocr_line' title='bbox 50 500 200 540'>
      <span class='ocrx_word' title='bbox 50 500 200 540; x_wconf 70'>42.5</span>
     </span>
     <span class='ocr_line' title='bbox 0 0 10 10'>
      <span class='ocrx_word' title='bbox 0 0 10 10; x_wconf 99'></span>
     </span>
    </p>
   </div>
  </div>
 </body>
</html>`

func TestParseHOCR(t *testing.T) {
	boxes, err := parseHOCR([]byte(sampleHOCR))
	if err != nil {
		t.Fatalf("parseHOCR: %v", err)
	}
	// The empty-word line is skipped.
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d: %+v", len(boxes), boxes)
	}

	title := boxes[0]
	if title.Text != "Quarterly Revenue" {
		t.Errorf("text = %q", title.Text)
	}
	if math.Abs(title.Confidence-0.85) > 1e-9 {
		t.Errorf("confidence = %v, want 0.85", title.Confidence)
	}
	if title.XCenter != 400 || title.YCenter != 40 {
		t.Errorf("center = (%v, %v), want (400, 40)", title.XCenter, title.YCenter)
	}
	want := [4][2]float64{{100, 20}, {700, 20}, {700, 60}, {100, 60}}
	if title.BBox != want {
		t.Errorf("bbox = %v, want %v", title.BBox, want)
	}

	value := boxes[1]
	if value.Text != "42.5" {
		t.Errorf("text = %q", value.Text)
	}
	if math.Abs(value.Confidence-0.70) > 1e-9 {
		t.Errorf("confidence = %v, want 0.70", value.Confidence)
	}
}

func TestParseHOCR_NoLines(t *testing.T) {
	boxes, err := parseHOCR([]byte("<html><body><p>plain</p></body></html>"))
	if err != nil {
		t.Fatalf("parseHOCR: %v", err)
	}
	if len(boxes) != 0 {
		t.Errorf("expected no boxes, got %+v", boxes)
	}
}

func TestBBoxCoords(t *testing.T) {
	coords, ok := bboxCoords("bbox 36 92 619 116; baseline 0 -6")
	if !ok {
		t.Fatal("expected bbox to parse")
	}
	if coords != [4]float64{36, 92, 619, 116} {
		t.Errorf("coords = %v", coords)
	}

	if _, ok := bboxCoords("baseline 0 -6"); ok {
		t.Error("expected no bbox")
	}
}
