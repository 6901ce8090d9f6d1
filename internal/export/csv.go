package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"phishguard/internal/models"
)

const csvTimeLayout = "2006-01-02 15:04:05"

var csvHeader = []string{"Date", "Domain", "Risk Level", "Score", "Key Reasons"}

// WriteCSV renders the report table: one row per report, newest first as
// given, with the first two reasons as the summary.
func WriteCSV(w io.Writer, reports []models.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range reports {
		domain := r.Domain
		if domain == "" {
			domain = "Unknown"
		}
		level := r.Level
		if level == "" {
			level = models.LevelUnknown
		}
		row := []string{
			r.Timestamp.UTC().Format(csvTimeLayout),
			domain,
			string(level),
			strconv.Itoa(r.Score),
			keyReasons(r.Reasons),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func keyReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "N/A"
	}
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	return strings.Join(reasons, ", ")
}
