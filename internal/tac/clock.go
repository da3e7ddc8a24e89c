package tac

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Clock is the external collaborator that supplies "current time" for
// datetime-styled suggestions; the engine itself never reads the wall
// clock.
// Tests substitute a fixed Clock; production code uses RealClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// RealClock is the production Clock, backed by the system wall clock.
var RealClock Clock = systemClock{}

// FixedClock is a Clock that always reports the same instant, for
// deterministic tests of datetime suggestion text.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

var offsetHoursRE = regexp.MustCompile(`\+(\d+)h`)

// parseOffsetHours extracts the first "+Nh" substring from description,
// returning 0 if none is present.
func parseOffsetHours(description string) int {
	m := offsetHoursRE.FindStringSubmatch(description)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

const (
	patternDDHHmmZ     = `\d{6}Z`
	patternYYYYMMDDHmZ = `\d{8}/\d{4}Z`
	patternDDHHmmOffZ  = `\d{2}/\d{4}Z`
)

// DatetimeSuggestionText computes clock-derived suggestion text for one of
// the three recognized datetime declaration patterns. It returns
// false if pattern is not one of the recognized shapes.
func DatetimeSuggestionText(pattern, description string, clock Clock) (string, bool) {
	now := clock.Now().UTC()

	switch pattern {
	case patternDDHHmmZ:
		rounded := roundToHalfHour(now)
		return fmt.Sprintf("%02d%02d%02dZ", rounded.Day(), rounded.Hour(), rounded.Minute()), true

	case patternYYYYMMDDHmZ:
		return fmt.Sprintf("%04d%02d%02d/%02d%02dZ", now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute()), true

	case patternDDHHmmOffZ:
		offset := parseOffsetHours(description)
		var t time.Time
		var minute int
		if offset != 0 {
			t = now.Add(time.Duration(offset) * time.Hour)
			minute = 0
		} else {
			t = roundToHalfHour(now)
			minute = t.Minute()
		}
		return fmt.Sprintf("%02d/%02d%02dZ", t.Day(), t.Hour(), minute), true
	}

	return "", false
}

// roundToHalfHour rounds t to the nearest :00 or :30, rolling the hour (and
// day, via time.Time's own calendar arithmetic) forward when rounding up
// past :45 of the day's last hour.
func roundToHalfHour(t time.Time) time.Time {
	return t.Round(30 * time.Minute)
}
