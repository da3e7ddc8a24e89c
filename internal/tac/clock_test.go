package tac

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_DatetimeSuggestionText(t *testing.T) {
	testCases := []struct {
		name        string
		pattern     string
		description string
		now         time.Time
		expect      string
		expectOK    bool
	}{
		{
			name:     "DDHHmmZ rounds down to half hour",
			pattern:  `\d{6}Z`,
			now:      time.Date(2024, 1, 12, 13, 10, 0, 0, time.UTC),
			expect:   "121300Z",
			expectOK: true,
		},
		{
			name:     "DDHHmmZ rounds up to half hour",
			pattern:  `\d{6}Z`,
			now:      time.Date(2024, 1, 12, 13, 20, 0, 0, time.UTC),
			expect:   "121330Z",
			expectOK: true,
		},
		{
			name:     "DDHHmmZ rolls hour and day past 23:45",
			pattern:  `\d{6}Z`,
			now:      time.Date(2024, 1, 12, 23, 50, 0, 0, time.UTC),
			expect:   "130000Z",
			expectOK: true,
		},
		{
			name:     "full date and time",
			pattern:  `\d{8}/\d{4}Z`,
			now:      time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			expect:   "20240115/1200Z",
			expectOK: true,
		},
		{
			name:     "day and time with no offset rounds",
			pattern:  `\d{2}/\d{4}Z`,
			now:      time.Date(2024, 1, 15, 9, 40, 0, 0, time.UTC),
			expect:   "15/0930Z",
			expectOK: true,
		},
		{
			name:        "six hour offset forces minutes to zero",
			pattern:     `\d{2}/\d{4}Z`,
			description: "Valid until +6h",
			now:         time.Date(2024, 1, 15, 9, 40, 0, 0, time.UTC),
			expect:      "15/1500Z",
			expectOK:    true,
		},
		{
			name:        "twelve hour offset crosses midnight",
			pattern:     `\d{2}/\d{4}Z`,
			description: "Valid until +12h",
			now:         time.Date(2024, 1, 15, 18, 15, 0, 0, time.UTC),
			expect:      "16/0600Z",
			expectOK:    true,
		},
		{
			name:     "unrecognized pattern",
			pattern:  `\d{4}`,
			now:      time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			expectOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			text, ok := DatetimeSuggestionText(tc.pattern, tc.description, FixedClock(tc.now))

			assert.Equal(tc.expectOK, ok)
			if tc.expectOK {
				assert.Equal(tc.expect, text)
			}
		})
	}
}

func Test_ParseOffsetHours(t *testing.T) {
	testCases := []struct {
		name        string
		description string
		expect      int
	}{
		{name: "no offset", description: "Observation time", expect: 0},
		{name: "six hours", description: "Forecast +6h from now", expect: 6},
		{name: "twelve hours", description: "+12h outlook", expect: 12},
		{name: "first offset wins", description: "+6h or +12h", expect: 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, parseOffsetHours(tc.description))
		})
	}
}
