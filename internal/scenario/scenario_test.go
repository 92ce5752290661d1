package scenario

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioAJSON = `{
  "name": "checkout-button",
  "decision": {"k": 50000, "threshold": 0, "baselineConversionRate": 0.05},
  "prior": {"type": "normal", "location": 0, "scale": 0.05},
  "experiment": {
    "dailyTraffic": 1000,
    "testDurationDays": 14,
    "eligibilityFraction": 1.0,
    "variantFraction": 0.5
  }
}`

const intervalYAML = `
decision:
  k: 50000
  threshold: 0
  baselineConversionRate: 0.05
prior:
  type: normal
  interval:
    low: -0.0822
    high: 0.0822
experiment:
  dailyTraffic: 1000
  testDurationDays: 14
  eligibilityFraction: 1
  variantFraction: 0.5
  conversionLatencyDays: 2
`

func TestParseJSON(t *testing.T) {
	f, err := Parse([]byte(scenarioAJSON), FormatJSON)
	require.NoError(t, err)
	sc, err := f.Build()
	require.NoError(t, err)

	assert.Equal(t, "checkout-button", sc.Name)
	assert.Equal(t, 50000.0, sc.Inputs.K)
	n, ok := sc.Prior.(distribution.Normal)
	require.True(t, ok, "expected a normal prior, got %T", sc.Prior)
	assert.Equal(t, 0.05, n.Sigma)
	sizes := sc.Design.SampleSizes()
	assert.Equal(t, 7000, sizes.Variant)
	assert.Equal(t, 7000, sizes.Control)
}

func TestParseYAMLInterval(t *testing.T) {
	f, err := Parse([]byte(intervalYAML), FormatYAML)
	require.NoError(t, err)
	sc, err := f.Build()
	require.NoError(t, err)

	n, ok := sc.Prior.(distribution.Normal)
	require.True(t, ok)
	assert.InDelta(t, 0, n.Mu, 1e-12)
	assert.InDelta(t, 0.05, n.Sigma, 1e-3)
	assert.Equal(t, 2.0, sc.Design.ConversionLatencyDays)
}

func TestSchemaViolationsAreInputErrors(t *testing.T) {
	doc := `{
	  "decision": {"k": -1, "threshold": 0},
	  "prior": {"type": "cauchy"},
	  "experiment": {"dailyTraffic": 1000, "testDurationDays": 1.5, "eligibilityFraction": 1, "variantFraction": 0.5},
	  "extra": true
	}`
	_, err := Parse([]byte(doc), FormatJSON)
	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrInvalidInput))

	var inputErr *validate.InputError
	require.True(t, errors.As(err, &inputErr))
	for _, fragment := range []string{"baselineConversionRate", "k", "type", "testDurationDays", "extra"} {
		assert.Contains(t, inputErr.Reason, fragment)
	}
}

func TestMalformedDocuments(t *testing.T) {
	_, err := Parse([]byte("{not json"), FormatJSON)
	assert.ErrorIs(t, err, validate.ErrInvalidInput)

	_, err = Parse([]byte("decision: [unterminated"), FormatYAML)
	assert.ErrorIs(t, err, validate.ErrInvalidInput)
}

func TestBuildRejectsEmptyArm(t *testing.T) {
	f, err := Parse([]byte(scenarioAJSON), FormatJSON)
	require.NoError(t, err)
	f.Experiment.DailyTraffic = 1
	f.Experiment.TestDurationDays = 1
	_, err = f.Build()
	assert.ErrorIs(t, err, validate.ErrInvalidInput)
}

func TestBuildRejectsInvalidPrior(t *testing.T) {
	f, err := Parse([]byte(scenarioAJSON), FormatJSON)
	require.NoError(t, err)
	f.Prior = distribution.Spec{Type: "uniform", Low: 0.1, High: -0.1}
	_, err = f.Build()
	assert.ErrorIs(t, err, validate.ErrInvalidInput)
}

func TestReadFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing-page.yml")
	require.NoError(t, os.WriteFile(path, []byte(intervalYAML), 0o644))

	f, err := ReadFile(path)
	require.NoError(t, err)
	sc, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, "pricing-page", sc.Name)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEncodeYAMLParsesBack(t *testing.T) {
	f, err := Parse([]byte(scenarioAJSON), FormatJSON)
	require.NoError(t, err)
	f.Prior = distribution.Spec{Type: "student-t", Location: 0.01, Scale: 0.04, DegreesOfFreedom: 5}

	data, err := Encode(f, FormatYAML)
	require.NoError(t, err)
	back, err := Parse(data, FormatYAML)
	require.NoError(t, err)
	sc, err := back.Build()
	require.NoError(t, err)

	st, ok := sc.Prior.(distribution.StudentT)
	require.True(t, ok)
	assert.Equal(t, 5.0, st.Nu)
	assert.False(t, math.IsNaN(st.Mean()))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a.YAML"))
	assert.Equal(t, FormatYAML, FormatFor("a.yml"))
	assert.Equal(t, FormatJSON, FormatFor("a.json"))
	assert.Equal(t, FormatJSON, FormatFor("a"))
}

func TestFromScenarioResolvesInterval(t *testing.T) {
	f, err := Parse([]byte(intervalYAML), FormatYAML)
	require.NoError(t, err)
	sc, err := f.Build()
	require.NoError(t, err)

	echoed := FromScenario(sc)
	assert.Nil(t, echoed.Prior.Interval)
	assert.Equal(t, "normal", echoed.Prior.Type)
	assert.InDelta(t, 0.05, echoed.Prior.Scale, 1e-3)

	data, err := Encode(echoed, FormatJSON)
	require.NoError(t, err)
	back, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	rebuilt, err := back.Build()
	require.NoError(t, err)
	assert.Equal(t, sc.Prior, rebuilt.Prior)
	assert.Equal(t, sc.Design, rebuilt.Design)
}
