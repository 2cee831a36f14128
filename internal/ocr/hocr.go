package ocr

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// parseHOCR converts Tesseract hOCR output into line-level TextBoxes.
// Each ocr_line element becomes one box: text is the space-joined ocrx_word
// children, confidence is the mean word x_wconf, and the bounding box comes
// from the line's bbox property.
func parseHOCR(data []byte) ([]TextBox, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var boxes []TextBox
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_line") {
			if box, ok := lineBox(n); ok {
				boxes = append(boxes, box)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return boxes, nil
}

// lineBox builds a TextBox from an ocr_line element.
func lineBox(line *html.Node) (TextBox, bool) {
	coords, ok := bboxCoords(attr(line, "title"))
	if !ok {
		return TextBox{}, false
	}

	var words []string
	var confSum float64
	var confCount int

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
			if t := nodeText(n); t != "" {
				words = append(words, t)
			}
			if conf, ok := titleProperty(attr(n, "title"), "x_wconf"); ok {
				confSum += conf / 100
				confCount++
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(line)

	text := strings.Join(words, " ")
	if text == "" {
		return TextBox{}, false
	}

	confidence := 0.0
	if confCount > 0 {
		confidence = confSum / float64(confCount)
	}

	x0, y0, x1, y1 := coords[0], coords[1], coords[2], coords[3]
	return TextBox{
		Text:       text,
		Confidence: confidence,
		BBox:       [4][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}},
		XCenter:    (x0 + x1) / 2,
		YCenter:    (y0 + y1) / 2,
	}, true
}

// bboxCoords extracts the four bbox integers from an hOCR title attribute,
// e.g. "bbox 36 92 619 116; baseline 0 -6".
func bboxCoords(title string) ([4]float64, bool) {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(prop))
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		var coords [4]float64
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return coords, false
			}
			coords[i] = v
		}
		return coords, true
	}
	return [4]float64{}, false
}

// titleProperty reads a single-valued numeric property like "x_wconf 93".
func titleProperty(title, name string) (float64, bool) {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(prop))
		if len(fields) != 2 || fields[0] != name {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
