// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"math"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/ayoisaiah/focusguard/internal/apperr"
)

const (
	secondsInAMinute = 60
	minutesInAnHour  = 60
)

var errParseDate = &apperr.Error{
	Message: "unable to understand %q as a date or time",
}

// Round rounds a time value in seconds, minutes, or hours to the nearest integer.
func Round(t float64) int {
	return int(math.Round(t))
}

// SecsToMinsAndSecs expresses a seconds value in minutes and seconds.
func SecsToMinsAndSecs(val float64) (mins, secs int) {
	total := max(Round(val), 0)

	return total / secondsInAMinute, total % secondsInAMinute
}

// MinsToHoursAndMins expresses a minutes value in hours and mins.
func MinsToHoursAndMins(val int) (hrs, mins int) {
	hrs = int(math.Floor(float64(val) / float64(minutesInAnHour)))
	mins = val % minutesInAnHour

	return
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// FromStr parses a human readable date or time such as "yesterday",
// "2 hours ago" or "2024-05-01" relative to now.
func FromStr(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "today":
		return RoundToStart(now), nil
	case "yesterday":
		return RoundToStart(now.AddDate(0, 0, -1)), nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}

	dt, err := dateparser.Parse(cfg, s)
	if err != nil {
		return time.Time{}, errParseDate.Fmt(s).Wrap(err)
	}

	return dt.Time, nil
}
