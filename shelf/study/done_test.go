package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func trackerAt(t *testing.T, byDay map[string]map[string]int64, now time.Time) *DoneTracker {
	t.Helper()
	d := NewDoneTracker(byDay)
	d.now = func() time.Time { return now }
	return d
}

func TestDayKeyUsesLocalDate(t *testing.T) {
	// Just before local midnight still counts as the same local day.
	assert.Equal(t, "2026-08-28", DayKey(time.Date(2026, 8, 28, 23, 59, 0, 0, time.Local)))
	assert.Equal(t, "2026-08-29", DayKey(time.Date(2026, 8, 29, 0, 0, 1, 0, time.Local)))
}

func TestDoneToggle(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	d := trackerAt(t, nil, now)

	assert.True(t, d.Toggle("a.pdf"))
	assert.True(t, d.IsDoneToday("a.pdf"))
	assert.ElementsMatch(t, []string{"a.pdf"}, d.DoneToday())

	assert.False(t, d.Toggle("a.pdf"))
	assert.False(t, d.IsDoneToday("a.pdf"))
	assert.Empty(t, d.DoneToday())
}

func TestDoneRecordsTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	d := trackerAt(t, nil, now)
	d.Toggle("a.pdf")

	byDay := d.ByDay()
	assert.Equal(t, now.Unix(), byDay[DayKey(now)]["a.pdf"])
}

func TestDoneScopedToDay(t *testing.T) {
	yesterday := map[string]map[string]int64{
		"2026-08-27": {"a.pdf": 1},
	}
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	d := trackerAt(t, yesterday, now)

	assert.False(t, d.IsDoneToday("a.pdf"))
	d.Toggle("b.pdf")

	byDay := d.ByDay()
	assert.Len(t, byDay["2026-08-27"], 1)
	assert.Len(t, byDay[DayKey(now)], 1)
}

func TestClearTodayKeepsOtherDays(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	d := trackerAt(t, map[string]map[string]int64{
		"2026-08-27": {"a.pdf": 1},
		DayKey(now):  {"b.pdf": 2},
	}, now)

	d.ClearToday()

	assert.Empty(t, d.DoneToday())
	assert.Len(t, d.ByDay()["2026-08-27"], 1)
}

func TestDonePruneAllDays(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	d := trackerAt(t, map[string]map[string]int64{
		"2026-08-27": {"a.pdf": 1, "gone.pdf": 2},
		DayKey(now):  {"gone.pdf": 3},
	}, now)

	changed := d.Prune(map[string]struct{}{"a.pdf": {}})
	assert.True(t, changed)

	byDay := d.ByDay()
	assert.Len(t, byDay["2026-08-27"], 1)
	// Today's bucket emptied out and was dropped.
	_, exists := byDay[DayKey(now)]
	assert.False(t, exists)

	assert.False(t, d.Prune(map[string]struct{}{"a.pdf": {}}))
}

func TestMemoPad(t *testing.T) {
	m := NewMemoPad(nil)

	m.Set("a.pdf", "復習する")
	assert.Equal(t, "復習する", m.Get("a.pdf"))

	m.Set("a.pdf", "  ")
	assert.Empty(t, m.Get("a.pdf"))
	assert.Empty(t, m.All())

	m.Set("b.pdf", "メモ")
	all := m.All()
	all["b.pdf"] = "mutated"
	assert.Equal(t, "メモ", m.Get("b.pdf"))
}
