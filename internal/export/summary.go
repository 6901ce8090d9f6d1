package export

import (
	"math"

	"phishguard/internal/models"
)

// Summary is the dashboard's headline numbers.
type Summary struct {
	Total        int `json:"total"`
	Safe         int `json:"safe"`
	Suspicious   int `json:"suspicious"`
	Phishing     int `json:"phishing"`
	AverageScore int `json:"averageScore"`
}

// Summarize counts reports by level and averages their scores. Reports with
// an unknown level count towards Total only.
func Summarize(reports []models.Report) Summary {
	s := Summary{Total: len(reports)}
	if len(reports) == 0 {
		return s
	}

	total := 0
	for _, r := range reports {
		switch r.Level {
		case models.LevelSafe:
			s.Safe++
		case models.LevelSuspicious:
			s.Suspicious++
		case models.LevelPhishing:
			s.Phishing++
		}
		total += r.Score
	}
	s.AverageScore = int(math.Floor(float64(total)/float64(len(reports)) + 0.5))
	return s
}
