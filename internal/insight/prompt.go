package insight

import (
	"fmt"
	"strings"

	"github.com/chartsight/chartsight/internal/ocr"
)

const (
	// MaxPromptValues bounds how many extracted values are embedded.
	MaxPromptValues = 20
	// MaxContextChars bounds the surrounding-document context.
	MaxContextChars = 1000
)

// BuildPrompt assembles the analysis prompt from the chart type, structured
// OCR text and optional document context. The response format requested here
// must stay in sync with ParseResponse's keyword matching.
func BuildPrompt(chartType string, st ocr.StructuredText, docContext string) string {
	values := st.Values
	if len(values) > MaxPromptValues {
		values = values[:MaxPromptValues]
	}
	context := docContext
	if len(context) > MaxContextChars {
		context = context[:MaxContextChars]
	}
	if context == "" {
		context = "No additional context available"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze this %s and provide detailed insights.\n\n", chartType)
	sb.WriteString("Chart Information:\n")
	fmt.Fprintf(&sb, "- Title: %s\n", orUnknown(st.Title))
	fmt.Fprintf(&sb, "- X-Axis: %s\n", orUnknown(st.XAxis))
	fmt.Fprintf(&sb, "- Y-Axis: %s\n", orUnknown(st.YAxis))
	fmt.Fprintf(&sb, "- Values Found: %s\n", strings.Join(values, ", "))
	fmt.Fprintf(&sb, "- Legend Items: %s\n", strings.Join(st.Legends, ", "))
	sb.WriteString("\nContext from Document:\n")
	sb.WriteString(context)
	sb.WriteString(`

Please provide a comprehensive analysis including:
1. **TREND**: Is the data showing an increasing, decreasing, stable, or fluctuating trend?
2. **MAX_POINT**: What appears to be the maximum value and what does it represent?
3. **MIN_POINT**: What appears to be the minimum value and what does it represent?
4. **CORRELATIONS**: Any notable correlations or relationships in the data?
5. **ANOMALIES**: Any outliers or unusual patterns?
6. **SUMMARY**: A detailed paragraph explaining what this chart shows, its significance, and key takeaways.

Format your response clearly with each section labeled.`)

	return sb.String()
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return "Unknown"
	}
	return *s
}
