package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type Level string
type Origin string

const (
	LevelSafe       Level = "SAFE"
	LevelSuspicious Level = "SUSPICIOUS"
	LevelPhishing   Level = "PHISHING"
	LevelUnknown    Level = "UNKNOWN"

	OriginAutomatic Origin = "automatic"
	OriginManual    Origin = "manual"
)

const (
	PhishingThreshold   = 70
	SuspiciousThreshold = 40

	ReportSchemaVersion = 1
)

// LevelFor is the only mapping from score to level.
func LevelFor(score int) Level {
	if score >= PhishingThreshold {
		return LevelPhishing
	}
	if score >= SuspiciousThreshold {
		return LevelSuspicious
	}
	return LevelSafe
}

// Severity orders levels SAFE < SUSPICIOUS < PHISHING. Unknown levels sort first.
func (l Level) Severity() int {
	switch l {
	case LevelSafe:
		return 1
	case LevelSuspicious:
		return 2
	case LevelPhishing:
		return 3
	default:
		return 0
	}
}

func (l Level) Valid() bool { return l.Severity() > 0 }

func (l Level) Color() string {
	switch l {
	case LevelSafe:
		return "#28a745"
	case LevelSuspicious:
		return "#ffc107"
	case LevelPhishing:
		return "#dc3545"
	default:
		return "#6c757d"
	}
}

func (l Level) Icon() string {
	switch l {
	case LevelSafe:
		return "✓"
	case LevelSuspicious:
		return "⚠"
	case LevelPhishing:
		return "✕"
	default:
		return "?"
	}
}

// FormatScore renders a score the way the popup shows it.
func FormatScore(score int) string {
	return fmt.Sprintf("%d/100", score)
}

// Breakdown records the points each factor contributed.
type Breakdown struct {
	DomainAge        int `json:"domainAge"`
	HTTPSStatus      int `json:"httpsStatus"`
	PasswordInsecure int `json:"passwordInsecure"`
	BlocklistMatch   int `json:"blocklistMatch"`
}

func (b Breakdown) Sum() int {
	return b.DomainAge + b.HTTPSStatus + b.PasswordInsecure + b.BlocklistMatch
}

// UnmarshalJSON also accepts the key names used by older exports.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var raw struct {
		DomainAge        *int `json:"domainAge"`
		HTTPSStatus      *int `json:"httpsStatus"`
		PasswordInsecure *int `json:"passwordInsecure"`
		BlocklistMatch   *int `json:"blocklistMatch"`
		PasswordInput    *int `json:"passwordInput"`
		PhishTankMatch   *int `json:"phishTankMatch"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Breakdown{
		DomainAge:        firstInt(raw.DomainAge),
		HTTPSStatus:      firstInt(raw.HTTPSStatus),
		PasswordInsecure: firstInt(raw.PasswordInsecure, raw.PasswordInput),
		BlocklistMatch:   firstInt(raw.BlocklistMatch, raw.PhishTankMatch),
	}
	return nil
}

func firstInt(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

// Assessment is the output of the risk scorer.
type Assessment struct {
	Score     int       `json:"riskScore"`
	Level     Level     `json:"riskLevel"`
	Breakdown Breakdown `json:"riskBreakdown"`
	Reasons   []string  `json:"detectionReasons"`
}

// ScanMetadata echoes the inputs a report was computed from.
type ScanMetadata struct {
	Protocol         Protocol `json:"protocol"`
	HasPasswordInput bool     `json:"hasPasswordInput"`
	DomainAgeDays    int      `json:"domainAgeDays"`
	IsNewDomain      bool     `json:"isNewDomain"`
	PhishTankListed  bool     `json:"phishTankListed"`
	Simulated        bool     `json:"simulated,omitempty"`
	LookupError      string   `json:"lookupError,omitempty"`
}

// Report is the persisted verdict for a single scan. Values are never mutated
// after creation; copy before changing.
type Report struct {
	SchemaVersion int          `json:"schemaVersion,omitempty"`
	ID            string       `json:"id"`
	URL           string       `json:"url"`
	Domain        string       `json:"domain"`
	Timestamp     time.Time    `json:"timestamp"`
	Score         int          `json:"riskScore"`
	Level         Level        `json:"riskLevel"`
	Reasons       []string     `json:"detectionReasons"`
	Breakdown     Breakdown    `json:"riskBreakdown"`
	Metadata      ScanMetadata `json:"scanMetadata"`
	Origin        Origin       `json:"source"`
}

// Clone returns a copy that shares no slices with r.
func (r Report) Clone() Report {
	c := r
	if r.Reasons != nil {
		c.Reasons = append([]string(nil), r.Reasons...)
	}
	return c
}
