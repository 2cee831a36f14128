package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chartsight/chartsight/internal/config"
)

// Orchestrator manages the analysis pipeline: it owns the task store, the
// bounded queue, and the worker pool.
type Orchestrator struct {
	tasks  *TaskStore
	queue  chan *Task
	worker *Worker
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline around a prewired worker.
func NewOrchestrator(cfg config.Config, worker *Worker, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		tasks:  NewTaskStore(cfg.TaskTTL),
		queue:  make(chan *Task, cfg.MaxQueueSize),
		worker: worker,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case task, ok := <-o.queue:
					if !ok {
						return
					}
					o.worker.Process(workerCtx, task)
				}
			}
		}()
	}

	// Start task store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.tasks.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new task for processing.
func (o *Orchestrator) Submit(task *Task) error {
	o.tasks.Put(task)
	select {
	case o.queue <- task:
		return nil
	default:
		task.Fail("queue_full")
		return fmt.Errorf("task queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetTask returns a task by ID.
func (o *Orchestrator) GetTask(id string) *Task {
	return o.tasks.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
