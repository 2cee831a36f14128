package detect

import (
	"context"
	"image"
	"log/slog"
	"time"
)

// ObjectDetector is an optional model capability that locates labeled
// objects in an image. A nil ObjectDetector means the capability is absent.
type ObjectDetector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// Detector produces a Verdict per image region, combining the optional
// object-detection capability with the geometric classifier.
type Detector struct {
	objects ObjectDetector
	timeout time.Duration
	log     *slog.Logger
}

func NewDetector(objects ObjectDetector, timeout time.Duration, log *slog.Logger) *Detector {
	return &Detector{objects: objects, timeout: timeout, log: log}
}

// Detect classifies one image region. When the object detector is present
// and succeeds, its detections are recorded in RawDetections but the
// geometric classifier alone decides IsChart/ChartType/Confidence; the
// detection output is informational. This is intentional: the generic
// detector's labels are not chart-specific enough to trust for the
// chart/non-chart call. When the detector is absent or fails, the geometric
// verdict is returned with no raw detections.
func (d *Detector) Detect(ctx context.Context, img image.Image) Verdict {
	v := Classify(img)
	v.RawDetections = []Detection{}

	if d.objects == nil {
		return v
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	detections, err := d.objects.Detect(ctx, img)
	if err != nil {
		d.log.Warn("object detection failed, using geometric verdict only", "error", err)
		return v
	}
	if detections != nil {
		v.RawDetections = detections
	}
	return v
}
