package main

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"phishguard/internal/export"
	"phishguard/internal/logging"
)

const maxImportBytes = 10 << 20

// ImportResponse is what we send back after an import.
type ImportResponse struct {
	Received int    `json:"received"`
	Skipped  int    `json:"skipped"`
	Stored   int    `json:"stored"`
	Message  string `json:"message"`
}

func (s *server) exportHandler(w http.ResponseWriter, r *http.Request) {
	reports, err := s.app.History.List(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to fetch reports")
		return
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="phishguard-reports-`+stamp+`.json"`)
		err = export.WriteJSON(w, reports)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="phishguard-reports-`+stamp+`.csv"`)
		err = export.WriteCSV(w, reports)
	default:
		writeError(w, http.StatusBadRequest, "format must be 'json' or 'csv'")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("export failed", "err", err)
	}
}

// importHandler accepts an exported archive either as the raw request body or
// as the 'file' field of a multipart form.
func (s *server) importHandler(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(http.MaxBytesReader(w, r.Body, maxImportBytes))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			writeError(w, http.StatusBadRequest, "File too large or malformed")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Missing 'file' parameter in form data")
			return
		}
		defer file.Close()
		body = file
	}

	reports, skipped, err := export.ReadJSON(body)
	if errors.Is(err, export.ErrNotArray) {
		writeError(w, http.StatusBadRequest, "Invalid format. Expected an array of reports.")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON file. Please export from PhishGuard.")
		return
	}

	stored, err := export.ImportInto(r.Context(), s.app.History, reports)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Received: len(reports) + skipped,
		Skipped:  skipped,
		Stored:   stored,
		Message:  "Import complete.",
	})
}
