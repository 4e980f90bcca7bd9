package utils

import (
	"fmt"
	"time"
)

// DateKey is the canonical local-date string (YYYY-MM-DD) used to index all
// per-day records. Build it only through DateKeyFromTime — slicing an ISO
// timestamp shifts the day near midnight across timezones.
type DateKey string

// DateKeyFromTime builds a DateKey from the local calendar date of t.
func DateKeyFromTime(t time.Time) DateKey {
	y, m, d := t.Date()
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", y, int(m), d))
}

// TodayKey returns the DateKey for the current local date.
func TodayKey() DateKey {
	return DateKeyFromTime(time.Now())
}

// Time parses the key back into a local midnight time.
func (k DateKey) Time() (time.Time, error) {
	return time.ParseInLocation("2006-01-02", string(k), time.Local)
}

// Valid reports whether the key parses as YYYY-MM-DD.
func (k DateKey) Valid() bool {
	_, err := k.Time()
	return err == nil
}

// WeekIndexSince returns the ordinal count of 7-day periods elapsed between
// the program start date and now. Week 0 is the start week; an unparseable
// or future start date yields 0.
func WeekIndexSince(startDate DateKey, now time.Time) int {
	start, err := startDate.Time()
	if err != nil {
		return 0
	}
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	days := int(midnight.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 7
}

// MondayFirstIndex maps a weekday onto the 0..6 Monday-first day index used
// by weekly plans.
func MondayFirstIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}
