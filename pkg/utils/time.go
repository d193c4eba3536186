package utils

import (
	"fmt"
	"time"
)

// NowRFC3339 returns the current UTC time in RFC3339 format
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ParseEventTime parses an event timestamp. Accepts full RFC3339 timestamps
// and bare dates (2006-01-02), which the calendar UI sends for all-day events.
func ParseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// ISOWeekLabel formats t as "<ISOYear>-W<ISOWeek>" with the week zero-padded
// to two digits. The year is the ISO week-numbering year, so late-December
// days that fall into week 1 carry the next year's label.
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
