package leave

import (
	"fmt"
	"time"
)

// =============================================================================
// WEEKDAY COUNTER
// =============================================================================

// IsWorkday reports whether t falls Monday through Friday.
func IsWorkday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// CountBusinessDays counts Monday-Friday days in [start, end], both ends
// inclusive. Fails with ErrInvalidRange if start is after end.
func CountBusinessDays(start, end time.Time) (int, error) {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return 0, errInvalidRange()
	}

	// Whole weeks contribute five days each; walk the remainder.
	span := int(end.Sub(start).Hours()/24) + 1
	count := (span / 7) * 5
	for d := start.AddDate(0, 0, (span/7)*7); !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWorkday(d) {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// ENROLLMENT WINDOW
// =============================================================================

// Window is the contiguous range of days in which vacation may be requested.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window, failing if end precedes start.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: Day(start), End: Day(end)}
	if w.Start.After(w.End) {
		return Window{}, fmt.Errorf("enrollment window end %s before start %s",
			w.End.Format(DateLayout), w.Start.Format(DateLayout))
	}
	return w, nil
}

// MonthWindow covers the whole calendar month.
func MonthWindow(year int, month time.Month) Window {
	start := NewDate(year, month, 1)
	return Window{Start: start, End: start.AddDate(0, 1, -1)}
}

// Contains reports whether day lies in the window.
func (w Window) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(w.Start) && !d.After(w.End)
}

// IsMonth reports whether the window is exactly one calendar month.
func (w Window) IsMonth() bool {
	return w.Start.Day() == 1 && w.End.Equal(w.Start.AddDate(0, 1, -1))
}

func (w Window) String() string {
	if w.IsMonth() {
		return w.Start.Format("January 2006")
	}
	return w.Start.Format(DateLayout) + " to " + w.End.Format(DateLayout)
}

// Check fails with ErrOutOfWindow unless both dates lie in the window.
func (w Window) Check(start, end time.Time) error {
	if w.Contains(start) && w.Contains(end) {
		return nil
	}
	if w.IsMonth() {
		return newRule(ErrOutOfWindow, "Dates must be in "+w.String())
	}
	return newRule(ErrOutOfWindow, "Dates must be between "+w.String())
}
