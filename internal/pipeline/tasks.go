// Package pipeline runs uploaded files through the analysis stages as
// asynchronous tasks: a bounded queue feeds a worker pool, and callers poll
// task state by ID.
package pipeline

import (
	"sync"
	"time"

	"github.com/chartsight/chartsight/internal/store"
)

// State is the lifecycle state of a task.
type State string

const (
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Task tracks one processing job. All fields behind the mutex; readers use
// Snapshot.
type Task struct {
	mu sync.Mutex

	ID         string
	SourceName string
	State      State
	Message    string
	Progress   int
	ResultID   string
	Result     *store.Result
	CreatedAt  time.Time
	UpdatedAt  time.Time

	fileData []byte
}

// NewTask returns a task in the processing state.
func NewTask(id, sourceName string, fileData []byte) *Task {
	now := time.Now()
	return &Task{
		ID:         id,
		SourceName: sourceName,
		State:      StateProcessing,
		Message:    "Task queued",
		Progress:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
		fileData:   fileData,
	}
}

// Advance moves progress forward. Progress never decreases; a lower value is
// ignored. An empty message keeps the previous one.
func (t *Task) Advance(message string, progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State != StateProcessing {
		return
	}
	if progress > t.Progress {
		t.Progress = progress
	}
	if message != "" {
		t.Message = message
	}
	t.UpdatedAt = time.Now()
}

// Fail marks the task failed and resets progress to zero.
func (t *Task) Fail(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.State = StateFailed
	t.Message = message
	t.Progress = 0
	t.UpdatedAt = time.Now()
}

// Complete marks the task finished with its saved result.
func (t *Task) Complete(resultID string, result *store.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.State = StateCompleted
	t.Message = "Processing complete"
	t.Progress = 100
	t.ResultID = resultID
	t.Result = result
	t.fileData = nil
	t.UpdatedAt = time.Now()
}

// TaskView is a consistent read of a task's state.
type TaskView struct {
	ID         string        `json:"task_id"`
	SourceName string        `json:"source_name"`
	State      State         `json:"status"`
	Message    string        `json:"message"`
	Progress   int           `json:"progress"`
	ResultID   string        `json:"result_id,omitempty"`
	Result     *store.Result `json:"result,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Snapshot returns a consistent copy of the task's state.
func (t *Task) Snapshot() TaskView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TaskView{
		ID:         t.ID,
		SourceName: t.SourceName,
		State:      t.State,
		Message:    t.Message,
		Progress:   t.Progress,
		ResultID:   t.ResultID,
		Result:     t.Result,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// Payload returns the uploaded file bytes.
func (t *Task) Payload() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fileData
}

// TaskStore holds in-flight and recently finished tasks. Finished tasks
// expire after the configured TTL.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]*Task
	ttl   time.Duration
}

// NewTaskStore returns an empty task store with the given retention.
func NewTaskStore(ttl time.Duration) *TaskStore {
	return &TaskStore{tasks: make(map[string]*Task), ttl: ttl}
}

// Put registers a task.
func (s *TaskStore) Put(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

// Get returns a task by ID, or nil.
func (s *TaskStore) Get(id string) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

// Len returns the number of tracked tasks.
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Cleanup drops finished tasks older than the TTL and returns how many
// were removed.
func (s *TaskStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, t := range s.tasks {
		view := t.Snapshot()
		if view.State == StateProcessing {
			continue
		}
		if view.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}
