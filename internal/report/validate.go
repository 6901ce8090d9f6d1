package report

import (
	"fmt"

	"phishguard/internal/models"
)

// Validate checks that r has the fields every consumer relies on.
func Validate(r models.Report) error {
	switch {
	case r.URL == "":
		return fmt.Errorf("report %s: missing url", r.ID)
	case r.Domain == "":
		return fmt.Errorf("report %s: missing domain", r.ID)
	case r.Timestamp.IsZero():
		return fmt.Errorf("report %s: missing timestamp", r.ID)
	case r.Score < 0 || r.Score > 100:
		return fmt.Errorf("report %s: score %d out of range", r.ID, r.Score)
	case !r.Level.Valid():
		return fmt.Errorf("report %s: unknown risk level %q", r.ID, r.Level)
	case r.Level != models.LevelFor(r.Score):
		return fmt.Errorf("report %s: risk level %s does not match score %d", r.ID, r.Level, r.Score)
	case r.Reasons == nil:
		return fmt.Errorf("report %s: missing detection reasons", r.ID)
	}
	return nil
}
