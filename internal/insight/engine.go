package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chartsight/chartsight/internal/ocr"
)

// Generator is an optional generative-text capability: free-form prompt in,
// free-form text out. A nil Generator means the capability is absent.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine turns structured chart text into an Insight, using the generative
// capability when available and a deterministic numeric fallback otherwise.
type Engine struct {
	gen     Generator
	timeout time.Duration
	stats   *ModelStats
	log     *slog.Logger
}

func NewEngine(gen Generator, timeout time.Duration, stats *ModelStats, log *slog.Logger) *Engine {
	return &Engine{gen: gen, timeout: timeout, stats: stats, log: log}
}

// Analyze generates an Insight for one chart. Capability absence and
// invocation failures both degrade silently to the fallback.
func (e *Engine) Analyze(ctx context.Context, chartType string, st ocr.StructuredText, docContext string) Insight {
	if e.gen == nil {
		return Fallback(st)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(chartType, st, docContext)
	start := time.Now()
	text, err := e.gen.Generate(ctx, prompt)
	if e.stats != nil {
		e.stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		e.log.Warn("insight generation failed, using numeric fallback", "error", err)
		return Fallback(st)
	}

	return ParseResponse(text)
}

// ParseResponse extracts structured fields from the model's free-text
// analysis by matching labeled lines ("TREND: ...", "MAX_POINT: ..." and so
// on, case-insensitive). Lines are tried against the keywords in a fixed
// order and a line feeds at most one field. When no summary line matches,
// the whole response becomes the summary.
func ParseResponse(text string) Insight {
	result := Insight{
		Correlations: []string{},
		Anomalies:    []string{},
		Summary:      text,
	}

	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, ":") {
			continue
		}
		lower := strings.ToLower(line)
		after := strings.TrimSpace(strings.SplitN(line, ":", 2)[1])

		switch {
		case strings.Contains(lower, "trend"):
			result.Trend = &after
		case strings.Contains(lower, "max"):
			result.MaxPoint = &Point{Description: after}
		case strings.Contains(lower, "min"):
			result.MinPoint = &Point{Description: after}
		case strings.Contains(lower, "correlation"):
			result.Correlations = append(result.Correlations, after)
		case strings.Contains(lower, "anomal"):
			result.Anomalies = append(result.Anomalies, after)
		case strings.Contains(lower, "summary"):
			result.Summary = after
		}
	}

	return result
}

var valueCleaner = strings.NewReplacer(",", "", "%", "", "$", "")

// Fallback computes a deterministic Insight from the extracted values alone:
// trend from last-versus-first, extrema from the numeric min/max. Fewer than
// two numeric values leaves the trend unknown and the extrema unset.
func Fallback(st ocr.StructuredText) Insight {
	var nums []float64
	for _, v := range st.Values {
		cleaned := strings.TrimSpace(valueCleaner.Replace(v))
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			nums = append(nums, f)
		}
	}

	trend := TrendUnknown
	var maxPoint, minPoint *Point

	if len(nums) >= 2 {
		switch {
		case nums[len(nums)-1] > nums[0]:
			trend = TrendIncreasing
		case nums[len(nums)-1] < nums[0]:
			trend = TrendDecreasing
		default:
			trend = TrendStable
		}

		maxVal, minVal := nums[0], nums[0]
		for _, n := range nums[1:] {
			maxVal = max(maxVal, n)
			minVal = min(minVal, n)
		}
		maxPoint = &Point{Value: &maxVal, Label: formatValue(maxVal)}
		minPoint = &Point{Value: &minVal, Label: formatValue(minVal)}
	}

	title := "Unknown"
	if st.Title != nil && *st.Title != "" {
		title = *st.Title
	}
	summary := fmt.Sprintf("Chart with title '%s' showing %d data points. Trend appears to be %s.",
		title, len(st.Values), trend)

	t := trend
	return Insight{
		Trend:        &t,
		MaxPoint:     maxPoint,
		MinPoint:     minPoint,
		Correlations: []string{},
		Anomalies:    []string{},
		Summary:      summary,
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
