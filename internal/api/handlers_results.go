package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.results.List()
	if err != nil {
		jsonError(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":       len(results),
		"extractions": results,
	})
}

func (s *Server) handleLatestResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.results.Latest()
	if err != nil {
		jsonError(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	if result == nil {
		jsonError(w, "no results yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.results.Get(chi.URLParam(r, "resultID"))
	if err != nil {
		jsonError(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	if result == nil {
		jsonError(w, "result not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleClearResults(w http.ResponseWriter, r *http.Request) {
	if err := s.results.Clear(); err != nil {
		jsonError(w, "failed to clear results", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "results cleared"})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	path := s.results.ImagePath(chi.URLParam(r, "imageID"))
	if path == "" {
		jsonError(w, "image not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
