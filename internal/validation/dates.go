package validation

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var errInvalidDate = errors.New("invalid date")

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp and
// returns the calendar day at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errInvalidDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func optionalDate(s string) *time.Time {
	t, err := ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}
