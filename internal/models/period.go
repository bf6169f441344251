package models

import (
	"fmt"
	"time"
)

// PeriodLayout is the billing period format, e.g. "2025-06".
const PeriodLayout = "2006-01"

// DateLayout is the calendar date format used for purchase and meal dates.
const DateLayout = "2006-01-02"

// CurrentPeriod returns the billing period containing t.
func CurrentPeriod(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ParsePeriod validates a YYYY-MM string.
func ParsePeriod(s string) (string, error) {
	t, err := time.Parse(PeriodLayout, s)
	if err != nil {
		return "", fmt.Errorf("period %q must look like YYYY-MM", s)
	}
	return t.Format(PeriodLayout), nil
}

// PeriodOrCurrent returns s when it is a valid period and the current one when s is empty.
func PeriodOrCurrent(s string, now time.Time) (string, error) {
	if s == "" {
		return CurrentPeriod(now), nil
	}
	return ParsePeriod(s)
}

// MonthRange returns the first day of the month and the first day of the next one.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
