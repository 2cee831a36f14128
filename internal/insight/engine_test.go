package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/chartsight/chartsight/internal/ocr"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func str(s string) *string { return &s }

func TestFallback_TwoValues(t *testing.T) {
	st := ocr.StructuredText{
		Title:  str("Revenue"),
		Values: []string{"10", "20"},
	}
	got := Fallback(st)

	if got.Trend == nil || *got.Trend != TrendIncreasing {
		t.Errorf("trend = %v", got.Trend)
	}
	if got.MaxPoint == nil || got.MaxPoint.Value == nil || *got.MaxPoint.Value != 20 {
		t.Errorf("max point = %+v", got.MaxPoint)
	}
	if got.MinPoint == nil || got.MinPoint.Value == nil || *got.MinPoint.Value != 10 {
		t.Errorf("min point = %+v", got.MinPoint)
	}
	want := "Chart with title 'Revenue' showing 2 data points. Trend appears to be increasing."
	if got.Summary != want {
		t.Errorf("summary = %q, want %q", got.Summary, want)
	}
}

func TestFallback_DecreasingAndFormatted(t *testing.T) {
	st := ocr.StructuredText{Values: []string{"1,500", "$900", "75%"}}
	got := Fallback(st)

	if got.Trend == nil || *got.Trend != TrendDecreasing {
		t.Errorf("trend = %v", got.Trend)
	}
	if got.MaxPoint == nil || *got.MaxPoint.Value != 1500 || got.MaxPoint.Label != "1500" {
		t.Errorf("max point = %+v", got.MaxPoint)
	}
	if got.MinPoint == nil || *got.MinPoint.Value != 75 {
		t.Errorf("min point = %+v", got.MinPoint)
	}
	if !strings.Contains(got.Summary, "'Unknown'") {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestFallback_NegativeValuesKeepSign(t *testing.T) {
	st := ocr.StructuredText{Values: []string{"-5", "10"}}
	got := Fallback(st)
	if got.Trend == nil || *got.Trend != TrendIncreasing {
		t.Errorf("trend = %v", got.Trend)
	}
	if got.MinPoint == nil || *got.MinPoint.Value != -5 {
		t.Errorf("min point = %+v", got.MinPoint)
	}
}

func TestFallback_TooFewValues(t *testing.T) {
	got := Fallback(ocr.StructuredText{Values: []string{"5"}})
	if got.Trend == nil || *got.Trend != TrendUnknown {
		t.Errorf("trend = %v", got.Trend)
	}
	if got.MaxPoint != nil || got.MinPoint != nil {
		t.Errorf("expected nil extrema, got max=%+v min=%+v", got.MaxPoint, got.MinPoint)
	}
}

func TestFallback_NonNumericIgnored(t *testing.T) {
	got := Fallback(ocr.StructuredText{Values: []string{"N/A", "30", "abc", "10"}})
	if got.Trend == nil || *got.Trend != TrendDecreasing {
		t.Errorf("trend = %v", got.Trend)
	}
	// Summary counts raw values, not the parseable ones.
	if !strings.Contains(got.Summary, "4 data points") {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestParseResponse_LabeledSections(t *testing.T) {
	text := `1. **TREND**: The data shows an increasing trend.
2. **MAX_POINT**: 95 in Q4, the strongest quarter.
3. **MIN_POINT**: 12 in Q1.
4. **CORRELATIONS**: Revenue tracks marketing spend.
5. **ANOMALIES**: Q3 dip is unexplained.
6. **SUMMARY**: Revenue grew steadily across the year.`

	got := ParseResponse(text)
	if got.Trend == nil || *got.Trend != "The data shows an increasing trend." {
		t.Errorf("trend = %v", got.Trend)
	}
	if got.MaxPoint == nil || got.MaxPoint.Description != "95 in Q4, the strongest quarter." {
		t.Errorf("max point = %+v", got.MaxPoint)
	}
	if got.MinPoint == nil || got.MinPoint.Description != "12 in Q1." {
		t.Errorf("min point = %+v", got.MinPoint)
	}
	if len(got.Correlations) != 1 || got.Correlations[0] != "Revenue tracks marketing spend." {
		t.Errorf("correlations = %v", got.Correlations)
	}
	if len(got.Anomalies) != 1 || got.Anomalies[0] != "Q3 dip is unexplained." {
		t.Errorf("anomalies = %v", got.Anomalies)
	}
	if got.Summary != "Revenue grew steadily across the year." {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestParseResponse_NoSummaryLineKeepsFullText(t *testing.T) {
	text := "The chart depicts seasonal variation with no clear labels."
	got := ParseResponse(text)
	if got.Summary != text {
		t.Errorf("summary = %q", got.Summary)
	}
	if got.Trend != nil {
		t.Errorf("trend = %v", got.Trend)
	}
}

func TestParseResponse_LinesWithoutColonSkipped(t *testing.T) {
	text := "trend upward\nTREND: flat"
	got := ParseResponse(text)
	if got.Trend == nil || *got.Trend != "flat" {
		t.Errorf("trend = %v", got.Trend)
	}
}

func TestBuildPrompt_Truncation(t *testing.T) {
	values := make([]string, 30)
	for i := range values {
		values[i] = "1"
	}
	st := ocr.StructuredText{Title: str("T"), Values: values}
	longContext := strings.Repeat("x", 2*MaxContextChars)

	prompt := BuildPrompt("chart", st, longContext)

	wantValues := strings.Repeat("1, ", MaxPromptValues-1) + "1"
	if !strings.Contains(prompt, "- Values Found: "+wantValues+"\n") {
		t.Error("expected values truncated to the cap")
	}
	if strings.Contains(prompt, strings.Repeat("x", MaxContextChars+1)) {
		t.Error("expected context truncated to the cap")
	}
	if !strings.Contains(prompt, "Analyze this chart") {
		t.Errorf("unexpected prompt preamble: %q", prompt[:50])
	}
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	prompt := BuildPrompt("graph", ocr.StructuredText{}, "")
	if !strings.Contains(prompt, "No additional context available") {
		t.Error("expected context placeholder")
	}
	if !strings.Contains(prompt, "- Title: Unknown\n") {
		t.Error("expected unknown title placeholder")
	}
}

func TestAnalyze_NoGeneratorUsesFallback(t *testing.T) {
	e := NewEngine(nil, 0, nil, testLogger())
	got := e.Analyze(context.Background(), "chart", ocr.StructuredText{Values: []string{"1", "2"}}, "")
	if got.Trend == nil || *got.Trend != TrendIncreasing {
		t.Errorf("trend = %v", got.Trend)
	}
}

func TestAnalyze_GeneratorErrorUsesFallback(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	stats := NewModelStats(time.Hour)
	e := NewEngine(gen, time.Second, stats, testLogger())

	got := e.Analyze(context.Background(), "chart", ocr.StructuredText{Values: []string{"9", "3"}}, "ctx")
	if got.Trend == nil || *got.Trend != TrendDecreasing {
		t.Errorf("trend = %v", got.Trend)
	}
	// Failed calls still count toward latency stats.
	if snap := stats.Snapshot(); snap.Count != 1 {
		t.Errorf("stats count = %d, want 1", snap.Count)
	}
}

func TestAnalyze_GeneratorResponseParsed(t *testing.T) {
	gen := &fakeGenerator{response: "TREND: stable\nSUMMARY: Flat quarter."}
	e := NewEngine(gen, time.Second, NewModelStats(time.Hour), testLogger())

	got := e.Analyze(context.Background(), "bar_chart", ocr.StructuredText{Title: str("Q2")}, "doc text")
	if got.Trend == nil || *got.Trend != "stable" {
		t.Errorf("trend = %v", got.Trend)
	}
	if got.Summary != "Flat quarter." {
		t.Errorf("summary = %q", got.Summary)
	}
	if !strings.Contains(gen.prompt, "Analyze this bar_chart") {
		t.Errorf("prompt = %q", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "doc text") {
		t.Error("expected document context in prompt")
	}
}
