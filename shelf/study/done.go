package study

import "time"

// DayKey formats a time as the local calendar date used to bucket
// completion records. Days roll over at local midnight, not UTC.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// DoneTracker records which items were completed on which local day.
// Each record carries the completion timestamp in unix seconds.
type DoneTracker struct {
	byDay map[string]map[string]int64
	now   func() time.Time
}

func NewDoneTracker(byDay map[string]map[string]int64) *DoneTracker {
	if byDay == nil {
		byDay = make(map[string]map[string]int64)
	}
	return &DoneTracker{byDay: byDay, now: time.Now}
}

// Toggle marks path done for today, or unmarks it when already done.
// It reports whether the path is marked afterwards.
func (d *DoneTracker) Toggle(path string) bool {
	day := DayKey(d.now())
	today := d.byDay[day]
	if _, done := today[path]; done {
		delete(today, path)
		if len(today) == 0 {
			delete(d.byDay, day)
		}
		return false
	}
	if today == nil {
		today = make(map[string]int64)
		d.byDay[day] = today
	}
	today[path] = d.now().Unix()
	return true
}

// IsDoneToday reports whether path was completed today.
func (d *DoneTracker) IsDoneToday(path string) bool {
	_, done := d.byDay[DayKey(d.now())][path]
	return done
}

// DoneToday returns today's completed paths.
func (d *DoneTracker) DoneToday() []string {
	today := d.byDay[DayKey(d.now())]
	out := make([]string, 0, len(today))
	for p := range today {
		out = append(out, p)
	}
	return out
}

// ClearToday wipes today's records. Other days are untouched.
func (d *DoneTracker) ClearToday() {
	delete(d.byDay, DayKey(d.now()))
}

// Prune removes records for paths absent from valid, across every
// loaded day, and drops days that end up empty. It reports whether
// anything was removed.
func (d *DoneTracker) Prune(valid map[string]struct{}) bool {
	changed := false
	for day, records := range d.byDay {
		for p := range records {
			if _, ok := valid[p]; !ok {
				delete(records, p)
				changed = true
			}
		}
		if len(records) == 0 {
			delete(d.byDay, day)
		}
	}
	return changed
}

// ByDay exposes the full record map for persistence.
func (d *DoneTracker) ByDay() map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(d.byDay))
	for day, records := range d.byDay {
		copied := make(map[string]int64, len(records))
		for p, ts := range records {
			copied[p] = ts
		}
		out[day] = copied
	}
	return out
}
