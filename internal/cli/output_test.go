package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheel-tracker/internal/models"
)

func newTestOutput(jsonMode bool) (*Output, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Output{writer: &buf, jsonMode: jsonMode, colorEnabled: false}, &buf
}

func TestOutputPlainHasNoColorCodes(t *testing.T) {
	out, buf := newTestOutput(false)

	out.Success("done")
	out.Error("boom")
	assert.Equal(t, "done\nboom\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[")
}

func TestOutputJSON(t *testing.T) {
	out, buf := newTestOutput(true)
	require.True(t, out.IsJSON())

	require.NoError(t, out.JSON(map[string]int{"wheels": 3}))
	assert.JSONEq(t, `{"wheels": 3}`, buf.String())
}

func TestParseRecommendation(t *testing.T) {
	for in, want := range map[string]models.Recommendation{
		"no": models.RecommendationNone,
		"NO": models.RecommendationNone,
		"st": models.RecommendationStable,
		"HV": models.RecommendationHighVolatility,
	} {
		rec, ok := parseRecommendation(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, rec)
	}

	_, ok := parseRecommendation("maybe")
	assert.False(t, ok)
}

func TestDisplayStatsEmpty(t *testing.T) {
	out, buf := newTestOutput(false)
	displayStats(out, nil)
	assert.True(t, strings.Contains(buf.String(), "No candidates"))
}
