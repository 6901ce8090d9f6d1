package main

import (
	"net/http"

	"phishguard/internal/export"
	"phishguard/internal/models"
)

func (s *server) reportsHandler(w http.ResponseWriter, r *http.Request) {
	reports, err := s.app.History.List(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to fetch reports")
		return
	}

	// Return an empty array `[]` instead of `null` when history is empty.
	if reports == nil {
		reports = []models.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *server) lookupHandler(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "Missing 'url' parameter")
		return
	}

	rep, found, err := s.app.History.FindByURL(r.Context(), rawURL)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to fetch reports")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "No report for this URL")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	reports, err := s.app.History.List(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to fetch reports")
		return
	}
	writeJSON(w, http.StatusOK, export.Summarize(reports))
}
