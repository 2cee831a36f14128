// Package store persists extraction results to a single JSON file and
// serves the region images saved alongside them. Writes are read-modify-write
// of the whole file under a mutex.
package store

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chartsight/chartsight/internal/insight"
	"github.com/chartsight/chartsight/internal/ocr"
)

// Extraction is the analysis of one image region. Chart regions carry
// structured OCR text and an inference; non-chart regions carry neither.
type Extraction struct {
	ImageID    string              `json:"image_id"`
	ImagePath  string              `json:"image_path"`
	Type       string              `json:"type"`
	PageNumber int                 `json:"page_number"`
	OCRData    *ocr.StructuredText `json:"ocr_data"`
	Inference  *insight.Insight    `json:"inference"`
}

// Result is the complete output of one processing job. Immutable once
// saved.
type Result struct {
	ID          string       `json:"extraction_id,omitempty"`
	SourceName  string       `json:"source_name"`
	ProcessedAt time.Time    `json:"processed_at"`
	TotalPages  int          `json:"total_pages"`
	FullText    string       `json:"extracted_text"`
	Extractions []Extraction `json:"extractions"`
	SavedAt     time.Time    `json:"saved_at,omitempty"`
}

type resultsFile struct {
	Extractions []Result `json:"extractions"`
}

// Store is a file-backed results store rooted at a data directory.
type Store struct {
	mu        sync.Mutex
	path      string
	imagesDir string
}

// New creates the data layout under dir and opens the store.
func New(dir string) (*Store, error) {
	imagesDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		path:      filepath.Join(dir, "results.json"),
		imagesDir: imagesDir,
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.write(resultsFile{Extractions: []Result{}}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save assigns the result an identifier and appends it to the results file.
func (s *Store) Save(res Result) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return Result{}, err
	}

	now := time.Now()
	res.ID = fmt.Sprintf("extraction_%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8])
	res.SavedAt = now
	if res.Extractions == nil {
		res.Extractions = []Extraction{}
	}

	data.Extractions = append(data.Extractions, res)
	if err := s.write(data); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Get returns a result by ID, or nil when not found.
func (s *Store) Get(id string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range data.Extractions {
		if data.Extractions[i].ID == id {
			return &data.Extractions[i], nil
		}
	}
	return nil, nil
}

// List returns all saved results in save order.
func (s *Store) List() ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	return data.Extractions, nil
}

// Latest returns the most recently saved result, or nil when empty.
func (s *Store) Latest() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	if len(data.Extractions) == 0 {
		return nil, nil
	}
	return &data.Extractions[len(data.Extractions)-1], nil
}

// Clear removes all saved results.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(resultsFile{Extractions: []Result{}})
}

// SaveImage writes a region image as PNG and returns its path.
func (s *Store) SaveImage(id string, img image.Image) (string, error) {
	path := filepath.Join(s.imagesDir, id+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// ImagePath returns the on-disk path for a saved region image, or an empty
// string when it does not exist.
func (s *Store) ImagePath(id string) string {
	path := filepath.Join(s.imagesDir, id+".png")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (s *Store) read() (resultsFile, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return resultsFile{Extractions: []Result{}}, nil
		}
		return resultsFile{}, fmt.Errorf("read results: %w", err)
	}

	var data resultsFile
	if err := json.Unmarshal(raw, &data); err != nil {
		// A corrupt results file should not brick the service.
		return resultsFile{Extractions: []Result{}}, nil
	}
	if data.Extractions == nil {
		data.Extractions = []Result{}
	}
	return data, nil
}

func (s *Store) write(data resultsFile) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return os.Rename(tmp, s.path)
}
