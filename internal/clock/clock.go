// Package clock provides a minute-precision time of day.
package clock

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes in a calendar day.
const MinutesPerDay = 24 * 60

// Clock is a time of day expressed as minutes since midnight.
// Values outside [0, MinutesPerDay) are not valid times of day.
type Clock int

var layouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3:04 pm",
	"3:04pm",
}

// Parse reads a time of day such as "10:00", "14:30:00" or "2:30 PM".
// Seconds are discarded.
func Parse(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("time of day is required")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("unable to parse time of day: %q", s)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Clock {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Add returns c shifted by the given number of minutes. The result is not
// wrapped at midnight; use Valid to detect overflow.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Valid reports whether c falls within a single calendar day.
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

// String formats c as 24-hour "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Kitchen formats c as 12-hour "3:04 PM".
func (c Clock) Kitchen() string {
	h, m := int(c)/60, int(c)%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

// MarshalJSON encodes c as an "HH:MM" string.
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes any format accepted by Parse.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
