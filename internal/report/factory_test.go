package report

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishguard/internal/models"
	"phishguard/internal/risk"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedFactory() *Factory {
	return &Factory{Now: func() time.Time { return fixedNow }}
}

func TestCreate(t *testing.T) {
	sig := models.SignalsFromURL("http://login.example.xyz/signin", true)
	lk := models.LookupResult{AgeInDays: 5, IsListed: true, Simulated: true}
	a := risk.Score(sig, lk)

	r, err := fixedFactory().Create(Input{
		URL:        sig.URL,
		Assessment: a,
		Metadata:   Metadata(sig, lk, nil),
		Origin:     models.OriginManual,
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^report_1741944413000_[0-9a-f]{9}$`), r.ID)
	assert.Equal(t, "login.example.xyz", r.Domain)
	assert.Equal(t, fixedNow, r.Timestamp)
	assert.Equal(t, 100, r.Score)
	assert.Equal(t, models.LevelPhishing, r.Level)
	assert.Equal(t, a.Breakdown, r.Breakdown)
	assert.Equal(t, a.Reasons, r.Reasons)
	assert.Equal(t, models.OriginManual, r.Origin)
	assert.Equal(t, models.ReportSchemaVersion, r.SchemaVersion)
	assert.True(t, r.Metadata.IsNewDomain)
	assert.True(t, r.Metadata.PhishTankListed)
	assert.True(t, r.Metadata.Simulated)
	assert.NoError(t, Validate(r))
}

func TestCreateClampsScore(t *testing.T) {
	f := fixedFactory()

	high, err := f.Create(Input{URL: "https://example.com", Assessment: models.Assessment{Score: 180}})
	require.NoError(t, err)
	assert.Equal(t, 100, high.Score)
	assert.Equal(t, models.LevelPhishing, high.Level)

	low, err := f.Create(Input{URL: "https://example.com", Assessment: models.Assessment{Score: -20}})
	require.NoError(t, err)
	assert.Equal(t, 0, low.Score)
	assert.Equal(t, models.LevelSafe, low.Level)
}

func TestCreateDefaults(t *testing.T) {
	r, err := fixedFactory().Create(Input{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{risk.ReasonNoThreats}, r.Reasons)
	assert.Equal(t, models.OriginAutomatic, r.Origin)
}

func TestCreateMalformedURL(t *testing.T) {
	f := fixedFactory()

	_, err := f.Create(Input{URL: "::not-a-url"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedURL))

	r, err := f.Create(Input{URL: "::not-a-url", FallbackDomain: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, "unknown", r.Domain)
	assert.Equal(t, "::not-a-url", r.URL)
}

func TestCreateDoesNotAliasReasons(t *testing.T) {
	reasons := []string{"a", "b"}
	r, err := fixedFactory().Create(Input{URL: "https://example.com", Assessment: models.Assessment{Reasons: reasons}})
	require.NoError(t, err)

	reasons[0] = "mutated"
	assert.Equal(t, "a", r.Reasons[0])
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := NewID(fixedNow)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestValidate(t *testing.T) {
	good := models.Report{
		ID: "r1", URL: "https://example.com", Domain: "example.com",
		Timestamp: fixedNow, Score: 10, Level: models.LevelSafe, Reasons: []string{},
	}
	require.NoError(t, Validate(good))

	bad := good
	bad.Level = "MAYBE"
	assert.Error(t, Validate(bad))

	bad = good
	bad.Score = 101
	assert.Error(t, Validate(bad))

	bad = good
	bad.Reasons = nil
	assert.Error(t, Validate(bad))

	bad = good
	bad.Domain = ""
	assert.Error(t, Validate(bad))

	bad = good
	bad.Level = models.LevelPhishing
	assert.Error(t, Validate(bad), "level must follow the score")
}
