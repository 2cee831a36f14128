package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chartsight/chartsight/internal/pipeline"
)

// Per-route upload allowlists. Each upload endpoint accepts only the
// extensions appropriate to its media class.
var (
	pdfExtensions   = map[string]bool{".pdf": true}
	imageExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	}
	documentExtensions = map[string]bool{
		".docx": true, ".md": true, ".markdown": true, ".csv": true, ".txt": true,
	}
)

func (s *Server) uploadHandler(allowed map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Limit total request size.
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		ext := strings.ToLower(filepath.Ext(filename))
		if !allowed[ext] {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", ext), http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}

		task := pipeline.NewTask(newTaskID(), filename, data)
		if err := s.orchestrator.Submit(task); err != nil {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"task_id":  task.ID,
			"message":  fmt.Sprintf("Processing %s", filename),
			"poll_url": fmt.Sprintf("/api/tasks/%s/status", task.ID),
		})
	}
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task := s.orchestrator.GetTask(taskID)
	if task == nil {
		jsonError(w, "task not found", http.StatusNotFound)
		return
	}
	snap := task.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func newTaskID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
