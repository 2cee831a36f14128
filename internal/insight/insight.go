package insight

// Trend values emitted by the deterministic fallback. The model-backed path
// stores the model's own wording verbatim.
const (
	TrendIncreasing  = "increasing"
	TrendDecreasing  = "decreasing"
	TrendStable      = "stable"
	TrendFluctuating = "fluctuating"
	TrendUnknown     = "unknown"
)

// Point is a data extremum. The fallback path fills Value and Label; the
// model path fills Description with the model's phrasing.
type Point struct {
	Value       *float64 `json:"value,omitempty"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Insight is the interpretive summary of one chart's data.
type Insight struct {
	Trend        *string  `json:"trend"`
	MaxPoint     *Point   `json:"max_point"`
	MinPoint     *Point   `json:"min_point"`
	Correlations []string `json:"correlations"`
	Anomalies    []string `json:"anomalies"`
	Summary      string   `json:"summary"`
}
