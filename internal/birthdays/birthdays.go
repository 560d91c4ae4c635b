// Package birthdays validates and matches stored calendar dates.
//
// Dates are stored as ISO "YYYY-MM-DD" strings; only the month-day part is
// significant when matching, the year is kept but unused.
package birthdays

import (
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Normalize validates a user-supplied date string and returns its canonical
// ISO form.
func Normalize(raw string) (string, error) {
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t.Format(layout), nil
}

// DueOn reports whether the stored date falls on the same month-day as now.
// Malformed stored values never match.
func DueOn(stored string, now time.Time) bool {
	t, err := time.Parse(layout, stored)
	if err != nil {
		return false
	}
	return t.Month() == now.Month() && t.Day() == now.Day()
}

// Due filters a uid -> date map down to the user IDs whose birthday is today.
func Due(dates map[string]string, now time.Time) []string {
	var due []string
	for uid, d := range dates {
		if DueOn(d, now) {
			due = append(due, uid)
		}
	}
	return due
}
