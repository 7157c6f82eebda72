package progress

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar(t *testing.T) {
	cases := []struct {
		percent float64
		filled  int
	}{
		{0, 0},
		{9.9, 0},
		{45, 4},
		{100, 10},
		{250, 10},
		{-5, 0},
	}
	for _, tc := range cases {
		bar := Bar(tc.percent)
		assert.Equal(t, tc.filled, strings.Count(bar, "■"), "percent %v", tc.percent)
		assert.Equal(t, 10-tc.filled, strings.Count(bar, "□"), "percent %v", tc.percent)
	}
}

func TestPace(t *testing.T) {
	assert.Equal(t, 1000, Pace(10000-4000, 6))
	assert.Equal(t, 6000, Pace(6000, 0))
	assert.Equal(t, 334, Pace(1000, 3))
	assert.Equal(t, 0, Pace(0, 5))
}

func TestDaysBetween(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	today := time.Date(2026, 10, 14, 23, 30, 0, 0, jst)

	assert.Equal(t, 6, DaysBetween(today, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(today, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(today, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAnalyze(t *testing.T) {
	today := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	w := &Work{Title: "星の海", GoalCount: 10000, Deadline: today.AddDate(0, 0, 6)}

	a := Analyze(w, 4000, today)
	require.InDelta(t, 40.0, a.Percent, 0.001)
	assert.Equal(t, 6000, a.Remaining)
	assert.Equal(t, 6, a.DaysLeft)
	assert.Equal(t, 1000, a.RequiredPace)
	assert.Equal(t, 4, a.FilledSegment)

	over := Analyze(w, 12000, today)
	assert.Equal(t, 0, over.Remaining)
	assert.Equal(t, 10, over.FilledSegment)
	assert.Equal(t, 0, over.RequiredPace)

	late := Analyze(&Work{GoalCount: 10000, Deadline: today.AddDate(0, 0, -2)}, 4000, today)
	assert.Equal(t, 0, late.DaysLeft)
	assert.Equal(t, 6000, late.RequiredPace)

	noGoal := Analyze(&Work{GoalCount: 0, Deadline: today}, 500, today)
	assert.Equal(t, 0.0, noGoal.Percent)
}

func TestEntryFilter(t *testing.T) {
	e := Entry{AuthorName: "ミナ", WorkTitle: "星の海", CharCount: 10}
	assert.True(t, EntryFilter{}.Match(e))
	assert.True(t, EntryFilter{AuthorName: "ミナ"}.Match(e))
	assert.False(t, EntryFilter{AuthorName: "ミナ", WorkTitle: "別作品"}.Match(e))
	assert.Equal(t, 30, Total([]*Entry{{CharCount: 10}, {CharCount: 20}}))
}
