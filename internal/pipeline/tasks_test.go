package pipeline

import (
	"testing"
	"time"

	"github.com/chartsight/chartsight/internal/store"
)

func TestTask_AdvanceIsMonotonic(t *testing.T) {
	task := NewTask("t1", "report.pdf", nil)

	task.Advance("Extracting content...", 10)
	task.Advance("Found 2 image regions, analyzing...", 30)

	snap := task.Snapshot()
	if snap.Progress != 30 {
		t.Fatalf("progress = %d, want 30", snap.Progress)
	}

	// A lower value never moves progress backward.
	task.Advance("late update", 20)
	snap = task.Snapshot()
	if snap.Progress != 30 {
		t.Errorf("progress = %d after stale update, want 30", snap.Progress)
	}
	if snap.Message != "late update" {
		t.Errorf("message = %q", snap.Message)
	}

	// An empty message keeps the previous one.
	task.Advance("", 50)
	snap = task.Snapshot()
	if snap.Progress != 50 || snap.Message != "late update" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestTask_FailResetsProgress(t *testing.T) {
	task := NewTask("t2", "broken.pdf", nil)
	task.Advance("working", 60)
	task.Fail("Failed to extract content")

	snap := task.Snapshot()
	if snap.State != StateFailed {
		t.Errorf("state = %q", snap.State)
	}
	if snap.Progress != 0 {
		t.Errorf("progress = %d, want 0", snap.Progress)
	}
	if snap.Message != "Failed to extract content" {
		t.Errorf("message = %q", snap.Message)
	}

	// Terminal states ignore further advances.
	task.Advance("zombie update", 90)
	if snap := task.Snapshot(); snap.Progress != 0 || snap.State != StateFailed {
		t.Errorf("snapshot after terminal advance = %+v", snap)
	}
}

func TestTask_Complete(t *testing.T) {
	task := NewTask("t3", "chart.png", []byte("payload"))
	task.Advance("working", 95)

	result := &store.Result{ID: "extraction_x", SourceName: "chart.png"}
	task.Complete(result.ID, result)

	snap := task.Snapshot()
	if snap.State != StateCompleted || snap.Progress != 100 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.ResultID != "extraction_x" || snap.Result == nil {
		t.Errorf("result not attached: %+v", snap)
	}
	if task.Payload() != nil {
		t.Error("expected payload released after completion")
	}
}

func TestTaskStore_Cleanup(t *testing.T) {
	s := NewTaskStore(10 * time.Millisecond)

	done := NewTask("done", "a.pdf", nil)
	done.Complete("r1", nil)
	s.Put(done)

	running := NewTask("running", "b.pdf", nil)
	s.Put(running)

	time.Sleep(25 * time.Millisecond)
	removed := s.Cleanup()
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if s.Get("done") != nil {
		t.Error("expected finished task to be removed")
	}
	if s.Get("running") == nil {
		t.Error("expected in-flight task to survive cleanup")
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}
