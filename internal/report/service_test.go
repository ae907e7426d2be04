package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeDefaults(t *testing.T) {
	from, to, err := ParseRange("", "")
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, now.Year(), from.Year())
	assert.Equal(t, now.Month(), from.Month())
	assert.Equal(t, now.Day(), from.Day())
	assert.Equal(t, 0, from.Hour())
	assert.Equal(t, 0, from.Minute())
	assert.False(t, to.Before(from))
}

func TestParseRangeExplicit(t *testing.T) {
	from, to, err := ParseRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, 2024, from.Year())
	assert.Equal(t, time.March, from.Month())
	assert.Equal(t, 1, from.Day())
	assert.Equal(t, 31, to.Day())
}

func TestParseRangeFreeForm(t *testing.T) {
	from, _, err := ParseRange("01/02/2024", "")
	require.NoError(t, err)
	assert.Equal(t, 2024, from.Year())
}

func TestParseRangeRejectsGarbage(t *testing.T) {
	_, _, err := ParseRange("not-a-date", "")
	assert.Error(t, err)

	_, _, err = ParseRange("", "neither-is-this")
	assert.Error(t, err)
}

func TestParseRangeRejectsInvertedRange(t *testing.T) {
	_, _, err := ParseRange("2024-03-31", "2024-03-01")
	assert.Error(t, err)
}
