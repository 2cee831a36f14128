package store

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestStore_SaveAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save(Result{SourceName: "report.pdf", TotalPages: 3})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(saved.ID, "extraction_") {
		t.Errorf("id = %q", saved.ID)
	}
	if saved.SavedAt.IsZero() {
		t.Error("expected SavedAt to be set")
	}
	if saved.Extractions == nil {
		t.Error("expected non-nil extractions slice")
	}
}

func TestStore_GetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.Save(Result{SourceName: "chart.png", FullText: "some text"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected result, got nil")
	}
	if got.SourceName != "chart.png" || got.FullText != "some text" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	missing, err := s.Get("nonexistent")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}
}

func TestStore_ListAndLatest(t *testing.T) {
	s := newTestStore(t)

	if latest, err := s.Latest(); err != nil || latest != nil {
		t.Fatalf("expected empty store, got %+v, %v", latest, err)
	}

	first, _ := s.Save(Result{SourceName: "a.pdf"})
	second, _ := s.Save(Result{SourceName: "b.pdf"})

	results, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 2 || results[0].ID != first.ID || results[1].ID != second.ID {
		t.Errorf("unexpected list order: %+v", results)
	}

	latest, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Errorf("latest = %+v", latest)
	}
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	s.Save(Result{SourceName: "x.pdf"})

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	results, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty after clear, got %+v", results)
	}
}

func TestStore_SaveImageAndPath(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})

	path, err := s.SaveImage("img_1_0_abcd1234", img)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if path != filepath.Join(dir, "images", "img_1_0_abcd1234.png") {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved image missing: %v", err)
	}

	if got := s.ImagePath("img_1_0_abcd1234"); got != path {
		t.Errorf("ImagePath = %q, want %q", got, path)
	}
	if got := s.ImagePath("missing"); got != "" {
		t.Errorf("expected empty path for missing image, got %q", got)
	}
}

func TestStore_SurvivesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "results.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Save(Result{SourceName: "fresh.pdf"}); err != nil {
		t.Fatalf("Save after corruption: %v", err)
	}
	results, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}
