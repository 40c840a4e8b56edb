// Package time contains calendar-date helpers
package time

import "time"

// DateLayout is the calendar date format used in ledgers, file names and URLs
const DateLayout = "2006-01-02"

// Date formats t as a calendar date in t's own location
func Date(t time.Time) string { return t.Format(DateLayout) }

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) { return time.Parse(DateLayout, s) }

// IsDate reports whether s is a valid YYYY-MM-DD date
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}
