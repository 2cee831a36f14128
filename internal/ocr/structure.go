package ocr

import (
	"strconv"
	"strings"
)

// Structure classifies text boxes into chart fields by relative position.
// Positions are normalized to [0,1] over the observed center range (a zero
// range maps to 0.5). Each box matches at most one rule, tried in order:
//
//	title:  top 20%, horizontally centered (longest candidate wins)
//	x-axis: bottom 20%, horizontally centered (longest wins)
//	y-axis: left 15%, vertically centered (longest wins)
//	value:  text that parses as a number
//	legend: right side, or bottom-right
//
// Boxes matching no rule are dropped. The function is pure: identical input
// always yields identical output.
func Structure(boxes []TextBox) StructuredText {
	st := emptyStructured()
	if len(boxes) == 0 {
		return st
	}

	minX, maxX := boxes[0].XCenter, boxes[0].XCenter
	minY, maxY := boxes[0].YCenter, boxes[0].YCenter
	for _, b := range boxes[1:] {
		minX = min(minX, b.XCenter)
		maxX = max(maxX, b.XCenter)
		minY = min(minY, b.YCenter)
		maxY = max(maxY, b.YCenter)
	}
	xRange := maxX - minX
	yRange := maxY - minY

	for _, b := range boxes {
		text := strings.TrimSpace(b.Text)

		xPos, yPos := 0.5, 0.5
		if xRange > 0 {
			xPos = (b.XCenter - minX) / xRange
		}
		if yRange > 0 {
			yPos = (b.YCenter - minY) / yRange
		}

		switch {
		case yPos < 0.2 && xPos > 0.3 && xPos < 0.7:
			if st.Title == nil || len(text) > len(*st.Title) {
				t := text
				st.Title = &t
			}
		case yPos > 0.8 && xPos > 0.3 && xPos < 0.7:
			if st.XAxis == nil || len(text) > len(*st.XAxis) {
				t := text
				st.XAxis = &t
			}
		case xPos < 0.15 && yPos > 0.2 && yPos < 0.8:
			if st.YAxis == nil || len(text) > len(*st.YAxis) {
				t := text
				st.YAxis = &t
			}
		case isNumeric(text):
			st.Values = append(st.Values, text)
		case xPos > 0.7 || (yPos > 0.7 && xPos > 0.5):
			st.Legends = append(st.Legends, text)
		}
	}

	return st
}

var numericCleaner = strings.NewReplacer(",", "", "%", "", "$", "")

// isNumeric reports whether text parses as a float after stripping
// thousands separators, percent and currency signs, and a leading minus.
// An empty string after stripping is not numeric.
func isNumeric(text string) bool {
	cleaned := strings.TrimSpace(numericCleaner.Replace(text))
	cleaned = strings.TrimPrefix(cleaned, "-")
	if cleaned == "" {
		return false
	}
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}
