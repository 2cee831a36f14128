package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"
)

// RemoteDetector calls an object-detection sidecar (e.g. a YOLO inference
// server) over HTTP. It implements ObjectDetector.
type RemoteDetector struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteDetector(baseURL string) *RemoteDetector {
	return &RemoteDetector{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type detectResponse struct {
	Detections []Detection `json:"detections"`
	Error      string      `json:"error,omitempty"`
}

// Detect posts the image as PNG to the sidecar's /detect endpoint.
func (d *RemoteDetector) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/detect", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "image/png")

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("detector api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("detector api status %d: %s", resp.StatusCode, string(respBody))
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("detector error: %s", out.Error)
	}
	return out.Detections, nil
}

// Close releases idle connections.
func (d *RemoteDetector) Close() {
	d.httpClient.CloseIdleConnections()
}
