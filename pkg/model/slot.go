package model

import (
	"fmt"
	"regexp"
	"time"
)

const (
	ClockLayout = "15:04"
	DayLayout   = "2006-01-02"
)

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// TimeSlot is a time-of-day interval within a single calendar day, both ends in
// 24h "HH:MM" form. The interval is half-open: [From, To).
type TimeSlot struct {
	From string `json:"from" bson:"from" validate:"required,hhmm"`
	To   string `json:"to" bson:"to" validate:"required,hhmm"`
}

// IsClock reports whether s is a valid 24h "HH:MM" value.
func IsClock(s string) bool {
	return clockRegex.MatchString(s)
}

// ClockMinutes converts "HH:MM" into minutes since midnight.
func ClockMinutes(s string) (int, error) {
	if !IsClock(s) {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Bounds returns the slot as minutes since midnight.
func (ts TimeSlot) Bounds() (from int, to int, err error) {
	if from, err = ClockMinutes(ts.From); err != nil {
		return 0, 0, err
	}
	if to, err = ClockMinutes(ts.To); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

// Validate checks the HH:MM form of both ends and that From is strictly before To.
func (ts TimeSlot) Validate() error {
	from, to, err := ts.Bounds()
	if err != nil {
		return err
	}
	if from >= to {
		return fmt.Errorf("duration.from (%s) must be before duration.to (%s)", ts.From, ts.To)
	}
	return nil
}

// Overlaps reports whether two slots intersect. Touching endpoints do not
// overlap. Slots that cannot be parsed never overlap anything.
func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	aFrom, aTo, err := ts.Bounds()
	if err != nil {
		return false
	}
	bFrom, bTo, err := other.Bounds()
	if err != nil {
		return false
	}
	return aFrom < bTo && aTo > bFrom
}

// ParseDay accepts either a bare calendar date ("2025-04-01") or an RFC3339
// timestamp and returns UTC midnight of the corresponding UTC calendar day.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC3339", s)
	}
	return TruncateDay(t), nil
}

// ParseTimestamp accepts an RFC3339 timestamp or a bare calendar date.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q, expected RFC3339 or YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
