package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecsToMinsAndSecs(t *testing.T) {
	cases := []struct {
		in         float64
		mins, secs int
	}{
		{0, 0, 0},
		{59, 0, 59},
		{60, 1, 0},
		{1499.6, 25, 0},
		{-3, 0, 0},
	}

	for _, tc := range cases {
		m, s := SecsToMinsAndSecs(tc.in)
		assert.Equal(t, tc.mins, m, tc.in)
		assert.Equal(t, tc.secs, s, tc.in)
	}
}

func TestMinsToHoursAndMins(t *testing.T) {
	h, m := MinsToHoursAndMins(135)
	assert.Equal(t, 2, h)
	assert.Equal(t, 15, m)
}

func TestFromStr(t *testing.T) {
	now := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	got, err := FromStr("yesterday", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), got)

	got, err = FromStr("today", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), got)

	got, err = FromStr("2 hours ago", now)
	require.NoError(t, err)
	assert.True(t, now.Add(-2*time.Hour).Equal(got), got)

	_, err = FromStr("not a date at all", now)
	assert.ErrorIs(t, err, errParseDate)
}
