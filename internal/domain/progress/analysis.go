package progress

import (
	"math"
	"strings"
	"time"
)

const barSegments = 10

// Analysis is the derived progress of a work at a given day.
type Analysis struct {
	Current       int
	Goal          int
	Percent       float64
	Remaining     int
	DaysLeft      int
	RequiredPace  int
	FilledSegment int
}

// Analyze computes progress for current characters against w at today.
// A non-positive goal yields 0 percent.
func Analyze(w *Work, current int, today time.Time) Analysis {
	a := Analysis{Current: current, Goal: w.GoalCount}
	if w.GoalCount > 0 {
		a.Percent = float64(current) / float64(w.GoalCount) * 100
	}
	a.Remaining = w.GoalCount - current
	if a.Remaining < 0 {
		a.Remaining = 0
	}
	a.DaysLeft = DaysBetween(today, w.Deadline)
	a.RequiredPace = Pace(a.Remaining, a.DaysLeft)
	a.FilledSegment = Segments(a.Percent)
	return a
}

// DaysBetween returns the calendar days from today to deadline, clamped at 0.
func DaysBetween(today, deadline time.Time) int {
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Pace is the characters per day needed to finish remaining in daysLeft days.
// With no days left the whole remainder is due.
func Pace(remaining, daysLeft int) int {
	if daysLeft <= 0 {
		return remaining
	}
	return int(math.Ceil(float64(remaining) / float64(daysLeft)))
}

// Segments is floor(percent/10), clamped to [0, 10].
func Segments(percent float64) int {
	n := int(math.Floor(percent / 10))
	if n < 0 {
		return 0
	}
	if n > barSegments {
		return barSegments
	}
	return n
}

// Bar renders a 10-segment progress bar.
func Bar(percent float64) string {
	n := Segments(percent)
	return strings.Repeat("■", n) + strings.Repeat("□", barSegments-n)
}
