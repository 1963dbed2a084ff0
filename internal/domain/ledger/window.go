package ledger

import (
	"errors"
	"time"
)

// ErrInvertedRange is returned when a range starts after it ends.
var ErrInvertedRange = errors.New("range start is after range end")

// Range is a date filter as supplied by callers. Either bound may be absent.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Window is a resolved, inclusive time window. Nil bounds are open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Unbounded matches every instant.
var Unbounded = Window{}

// NewWindow expands r to whole days in loc: From starts at local midnight,
// To ends at the last nanosecond of its day. With only From set the window
// covers that single day. With only To set the window is open at the start.
func NewWindow(r Range, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	var w Window
	switch {
	case r.From != nil && r.To != nil:
		start, end := StartOfDay(*r.From, loc), EndOfDay(*r.To, loc)
		if start.After(end) {
			return Window{}, ErrInvertedRange
		}
		w.Start, w.End = &start, &end
	case r.From != nil:
		start, end := StartOfDay(*r.From, loc), EndOfDay(*r.From, loc)
		w.Start, w.End = &start, &end
	case r.To != nil:
		end := EndOfDay(*r.To, loc)
		w.End = &end
	}
	return w, nil
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

func (w Window) IsUnbounded() bool {
	return w.Start == nil && w.End == nil
}

// StartOfDay returns local midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of t's day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
