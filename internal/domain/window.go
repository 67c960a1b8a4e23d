package domain

import (
	"fmt"
	"time"
)

// Weekday is one of the seven English weekday names used on the wire.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// AllWeekdays is the fixed Monday-first ordering. The position of a weekday in
// this slice is its weekday index.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// IsValid checks if a weekday is one of the seven known names
func (w Weekday) IsValid() bool {
	return w.Index() >= 0
}

// Index returns the Monday-first position of the weekday, or -1.
func (w Weekday) Index() int {
	for i, d := range AllWeekdays {
		if d == w {
			return i
		}
	}
	return -1
}

// String returns the string representation of the weekday
func (w Weekday) String() string {
	return string(w)
}

// WeekdayOf returns the weekday a calendar date falls on.
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday is Sunday-first.
	return AllWeekdays[(int(t.Weekday())+6)%7]
}

// ParseWeekday validates a wire weekday label.
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(s)
	if !w.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return w, nil
}

// Window is a time-of-day range with fixed-width "HH:MM" bounds. Bounds compare
// correctly as strings because every value is zero-padded to the same width.
type Window struct {
	Start string
	End   string
}

// ValidateWindow accepts only well-formed HH:MM bounds with end after start.
func ValidateWindow(start, end string) error {
	if !isClock(start) {
		return fmt.Errorf("%w: bad start time %q", ErrInvalidWindow, start)
	}
	if !isClock(end) {
		return fmt.Errorf("%w: bad end time %q", ErrInvalidWindow, end)
	}
	if end <= start {
		return fmt.Errorf("%w: %s-%s", ErrInvalidWindow, start, end)
	}
	return nil
}

func isClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	return hh <= 23 && mm <= 59
}

// The two overlap tests below differ on purpose and must not be unified.
// Merging a user's own windows treats them as half-open, so back-to-back
// windows stay separate entries. Matching against other users treats them as
// closed, so a shared boundary minute still counts as both being online.

// OverlapsHalfOpen reports whether [w.Start, w.End) and [o.Start, o.End) intersect.
func (w Window) OverlapsHalfOpen(o Window) bool {
	return w.Start < o.End && w.End > o.Start
}

// OverlapsClosed reports whether [w.Start, w.End] and [o.Start, o.End] intersect.
func (w Window) OverlapsClosed(o Window) bool {
	return o.Start <= w.End && o.End >= w.Start
}

// Intersect returns the shared range of two windows. Only meaningful when they
// overlap.
func (w Window) Intersect(o Window) Window {
	out := w
	if o.Start > out.Start {
		out.Start = o.Start
	}
	if o.End < out.End {
		out.End = o.End
	}
	return out
}

// DateOf truncates t to its calendar date, normalized to UTC midnight so dates
// from the store and from the clock compare equal.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpireDate returns the first date on or after created that falls on wd.
func ExpireDate(created time.Time, wd Weekday) time.Time {
	cursor := DateOf(created)
	target := wd.Index()
	if target < 0 {
		return cursor
	}
	for WeekdayOf(cursor).Index() != target {
		cursor = cursor.AddDate(0, 0, 1)
	}
	return cursor
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

const maxLabelLength = 32

// ValidateLabel checks a spec or keystone label.
func ValidateLabel(field, value string) error {
	if value == "" || len(value) > maxLabelLength {
		return fmt.Errorf("%w: %s", ErrInvalidLabel, field)
	}
	return nil
}
