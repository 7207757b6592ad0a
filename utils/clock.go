package utils

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalDateLayout is the single date representation used internally.
// Input boundaries also accept ISODateLayout; normalization happens here only.
const (
	CanonicalDateLayout = "02-01-2006"
	ISODateLayout       = "2006-01-02"
	MinutesPerDay       = 24 * 60
)

// NormalizeDate converts a dash-separated date string into the canonical
// DD-MM-YYYY form. The two accepted inputs are day-first (DD-MM-YYYY) and
// year-first (YYYY-MM-DD), told apart by which segment has four digits.
func NormalizeDate(input string) (string, error) {
	parts := strings.Split(input, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid date %q: expected three dash-separated segments", input)
	}

	var layout string
	switch {
	case len(parts[0]) == 4:
		layout = ISODateLayout
	case len(parts[2]) == 4:
		layout = CanonicalDateLayout
	default:
		return "", fmt.Errorf("invalid date %q: no four-digit year segment", input)
	}

	t, err := time.Parse(layout, input)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", input, err)
	}
	return t.Format(CanonicalDateLayout), nil
}

// ParseCanonicalDate parses a canonical DD-MM-YYYY date into a local midnight.
func ParseCanonicalDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(CanonicalDateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid canonical date %q: %w", date, err)
	}
	return t, nil
}

// ToMinutes converts an "hh:mm" clock string to minutes from midnight.
// Anything beyond the two colon-separated fields is rejected.
func ToMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ToClock converts minutes from midnight to an "hh:mm" clock string.
// Values are wrapped into 0..1439; all times are local wall-clock minutes.
func ToClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// WeekdayOf returns the weekday of a canonical date.
func WeekdayOf(date string) (time.Weekday, error) {
	t, err := ParseCanonicalDate(date)
	if err != nil {
		return time.Sunday, err
	}
	return t.Weekday(), nil
}

// AbsoluteTime resolves a canonical date plus minutes-from-midnight into a
// local wall-clock instant.
func AbsoluteTime(date string, minutes int) (time.Time, error) {
	midnight, err := ParseCanonicalDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return midnight.Add(time.Duration(minutes) * time.Minute), nil
}

// SameCanonicalDay reports whether the instant falls on the given canonical date.
func SameCanonicalDay(t time.Time, date string) bool {
	return t.Format(CanonicalDateLayout) == date
}
