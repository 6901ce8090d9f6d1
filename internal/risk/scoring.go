package risk

import (
	"fmt"
	"math"
	"net/url"

	"phishguard/internal/models"
)

const (
	WeightHTTPS            = 30
	WeightPasswordInsecure = 50
	WeightBlocklist        = 100

	// Domains younger than NewDomainThresholdDays earn a linear penalty from
	// MaxDomainAgePenalty at age 0 down to 0 at the threshold.
	NewDomainThresholdDays = 30
	MaxDomainAgePenalty    = 40

	// FailSafeScore is reported when the URL has no usable host.
	FailSafeScore = 50

	ReasonNoHTTPS          = "Not using HTTPS connection"
	ReasonPasswordInsecure = "Password input detected on insecure connection"
	ReasonBlocklist        = "Domain listed in PhishTank database"
	ReasonDemoPrefix       = "[DEMO MODE] "
	ReasonNoThreats        = "No threats detected"
	ReasonScoringError     = "Error during risk assessment"
)

// Score converts raw signals and lookup facts into an assessment. It reads
// nothing but its arguments, so identical inputs yield identical output.
//
// Factors are independent and additive. The password factor deliberately
// stacks with the HTTPS factor; clamping is applied once to the total.
func Score(signals models.Signals, lookup models.LookupResult) models.Assessment {
	if _, err := hostOf(signals.URL); err != nil {
		return models.Assessment{
			Score:   FailSafeScore,
			Level:   models.LevelFor(FailSafeScore),
			Reasons: []string{ReasonScoringError},
		}
	}

	var breakdown models.Breakdown
	reasons := make([]string, 0, 4)

	// ── 1. Transport ─────────────────────────────────────────────────────────
	insecure := signals.Protocol != models.ProtocolHTTPS
	if insecure {
		breakdown.HTTPSStatus = WeightHTTPS
		reasons = append(reasons, ReasonNoHTTPS)
	}

	// ── 2. Credentials over an insecure transport ───────────────────────────
	if signals.HasPasswordInput && insecure {
		breakdown.PasswordInsecure = WeightPasswordInsecure
		reasons = append(reasons, ReasonPasswordInsecure)
	}

	// ── 3. Domain age ramp ───────────────────────────────────────────────────
	age := lookup.AgeInDays
	if age < 0 {
		age = 0
	}
	if age < NewDomainThresholdDays {
		breakdown.DomainAge = DomainAgePenalty(age)
		reasons = append(reasons, fmt.Sprintf("New domain registered %d days ago", age))
	}

	// ── 4. Blocklist ─────────────────────────────────────────────────────────
	if lookup.IsListed {
		breakdown.BlocklistMatch = WeightBlocklist
		if lookup.Simulated {
			reasons = append(reasons, ReasonDemoPrefix+ReasonBlocklist)
		} else {
			reasons = append(reasons, ReasonBlocklist)
		}
	}

	// ── 5. Clamp, band, return ───────────────────────────────────────────────
	score := Clamp(breakdown.Sum())
	if len(reasons) == 0 {
		reasons = append(reasons, ReasonNoThreats)
	}

	return models.Assessment{
		Score:     score,
		Level:     models.LevelFor(score),
		Breakdown: breakdown,
		Reasons:   reasons,
	}
}

// DomainAgePenalty is the rounded linear ramp for domains under the threshold.
func DomainAgePenalty(ageInDays int) int {
	if ageInDays < 0 {
		ageInDays = 0
	}
	if ageInDays >= NewDomainThresholdDays {
		return 0
	}
	span := float64(NewDomainThresholdDays - ageInDays)
	return int(math.Round(span * MaxDomainAgePenalty / NewDomainThresholdDays))
}

// Clamp bounds a score into [0,100].
func Clamp(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return u.Hostname(), nil
}
