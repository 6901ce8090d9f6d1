package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"phishguard/internal/history"
	"phishguard/internal/models"
	"phishguard/internal/queue"
	"phishguard/internal/report"
	"phishguard/internal/scan"
)

// scanRequest carries either a bare URL, in which case the page is fetched,
// or a full set of signals observed by the caller.
type scanRequest struct {
	URL              string `json:"url"`
	Protocol         string `json:"protocol,omitempty"`
	HasPasswordInput *bool  `json:"hasPasswordInput,omitempty"`
	Domain           string `json:"domain,omitempty"`
	Origin           string `json:"origin,omitempty"`
}

func (req scanRequest) signals() (models.Signals, bool) {
	if req.HasPasswordInput == nil {
		return models.Signals{}, false
	}
	s := models.SignalsFromURL(req.URL, *req.HasPasswordInput)
	if req.Protocol != "" {
		s.Protocol = models.ProtocolFromScheme(req.Protocol)
	}
	if req.Domain != "" {
		s.Domain = req.Domain
	}
	return s, true
}

func (req scanRequest) origin() (models.Origin, bool) {
	switch models.Origin(req.Origin) {
	case "":
		return models.OriginManual, true
	case models.OriginManual, models.OriginAutomatic:
		return models.Origin(req.Origin), true
	}
	return "", false
}

func decodeScanRequest(w http.ResponseWriter, r *http.Request) (scanRequest, bool) {
	var req scanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body")
		return req, false
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "Missing 'url' field")
		return req, false
	}
	return req, true
}

func (s *server) scanHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScanRequest(w, r)
	if !ok {
		return
	}
	origin, ok := req.origin()
	if !ok {
		writeError(w, http.StatusBadRequest, "origin must be 'automatic' or 'manual'")
		return
	}

	ctx := r.Context()
	var (
		res scan.Result
		err error
	)
	if signals, given := req.signals(); given {
		res, err = s.app.Scanner.Scan(ctx, signals, origin)
	} else {
		res, err = s.app.Scanner.ScanURL(ctx, req.URL, origin)
	}

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, history.ErrStorageUnavailable):
		// The verdict is still useful to the caller even if it was not kept.
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":  err.Error(),
			"report": res.Report,
		})
	case errors.Is(err, report.ErrMalformedURL):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil:
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *server) enqueueHandler(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "Scan queue not configured")
		return
	}
	req, ok := decodeScanRequest(w, r)
	if !ok {
		return
	}
	origin, ok := req.origin()
	if !ok {
		writeError(w, http.StatusBadRequest, "origin must be 'automatic' or 'manual'")
		return
	}

	if req.Origin == "" {
		origin = models.OriginAutomatic
	}

	signals, given := req.signals()
	if !given {
		signals = models.SignalsFromURL(req.URL, false)
	}

	task, err := queue.Enqueue(r.Context(), s.queue, queue.ScanTask{Signals: signals, Origin: origin})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": task.ID,
		"message": "Scan queued.",
	})
}
