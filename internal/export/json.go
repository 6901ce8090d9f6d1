// Package export moves report history in and out of the process: JSON
// archives, CSV tables and dashboard summary statistics.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"phishguard/internal/history"
	"phishguard/internal/models"
	"phishguard/internal/report"
	"phishguard/internal/risk"
)

// ErrNotArray is returned when an import file is valid JSON but not a list.
var ErrNotArray = errors.New("invalid format: expected an array of reports")

// legacySourceExtension is what older extension builds wrote for automatic scans.
const legacySourceExtension = "extension"

// WriteJSON writes reports as a pretty-printed JSON array.
func WriteJSON(w io.Writer, reports []models.Report) error {
	if reports == nil {
		reports = []models.Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// record overrides the fields older exports wrote in other shapes.
type record struct {
	models.Report
	Timestamp json.RawMessage `json:"timestamp"`
	Level     json.RawMessage `json:"riskLevel"`
	Origin    string          `json:"source"`
}

// ReadJSON parses an exported archive. Entries that do not decode, or that
// still fail report validation once normalised, are skipped and counted.
func ReadJSON(r io.Reader) (reports []models.Report, skipped int, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read import: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		if !json.Valid(data) {
			return nil, 0, fmt.Errorf("invalid JSON file")
		}
		return nil, 0, ErrNotArray
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("invalid JSON file: %w", err)
	}

	reports = make([]models.Report, 0, len(raw))
	for _, item := range raw {
		rep, err := decodeRecord(item)
		if err != nil {
			skipped++
			continue
		}
		if err := report.Validate(rep); err != nil {
			skipped++
			continue
		}
		reports = append(reports, rep)
	}
	return reports, skipped, nil
}

func decodeRecord(item json.RawMessage) (models.Report, error) {
	var rec record
	if err := json.Unmarshal(item, &rec); err != nil {
		return models.Report{}, err
	}

	rep := rec.Report
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return models.Report{}, err
	}
	rep.Timestamp = ts

	// The stored level is ignored; it is always a function of the score.
	rep.Score = risk.Clamp(rep.Score)
	rep.Level = models.LevelFor(rep.Score)

	switch rec.Origin {
	case string(models.OriginManual):
		rep.Origin = models.OriginManual
	default:
		// "automatic", the legacy "extension" and anything unrecognised.
		rep.Origin = models.OriginAutomatic
	}

	if rep.Reasons == nil {
		rep.Reasons = []string{}
	}
	if rep.Domain == "" {
		if d, err := report.DomainOf(rep.URL); err == nil {
			rep.Domain = d
		}
	}
	return rep, nil
}

// parseTimestamp accepts RFC 3339 strings and Unix milliseconds.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		if s == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
		}
		return t.UTC(), nil
	}
	ms, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %s: %w", raw, err)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

// ImportInto appends reports to the store oldest first, so the archive's
// newest report ends up at the front. Scores are clamped and levels
// re-derived before storing; reports that still fail validation are
// dropped. Returns how many were stored.
func ImportInto(ctx context.Context, store *history.Store, reports []models.Report) (int, error) {
	ordered := make([]models.Report, 0, len(reports))
	for _, r := range reports {
		r.Score = risk.Clamp(r.Score)
		r.Level = models.LevelFor(r.Score)
		if r.Reasons == nil {
			r.Reasons = []string{}
		}
		if report.Validate(r) != nil {
			continue
		}
		ordered = append(ordered, r)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	stored := 0
	for _, r := range ordered {
		if r.ID == "" {
			r.ID = report.NewID(r.Timestamp)
		}
		ok, err := store.Append(ctx, r)
		if err != nil {
			return stored, err
		}
		if ok {
			stored++
		}
	}
	return stored, nil
}
