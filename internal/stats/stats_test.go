package stats

import (
	"bytes"
	"testing"
	"time"

	"github.com/rezmoss/focuscli/internal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(month time.Month, day int, mbs, bt bool) journal.Entry {
	return journal.Entry{Timestamp: time.Date(2026, month, day, 10, 0, 0, 0, time.UTC), MBS: mbs, BT: bt}
}

func TestCompute(t *testing.T) {
	today := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)
	entries := []journal.Entry{
		entry(3, 6, true, true),   // exactly 14 days ago: excluded
		entry(3, 7, true, false),  // 13 days ago: included
		entry(3, 19, false, true), // yesterday
		entry(3, 20, true, true),
		entry(3, 20, true, false),
	}

	s := Compute(entries, today, 45)
	assert.Equal(t, 4, s.Sessions)
	assert.Equal(t, 180, s.FocusMinutes)
	assert.Equal(t, 3, s.MBS)
	assert.Equal(t, 2, s.BT)
	assert.InDelta(t, 75.0, s.MBSPercent(), 1e-9)
	assert.InDelta(t, 50.0, s.BTPercent(), 1e-9)

	require.Len(t, s.Days, Window)
	assert.Equal(t, "2026-03-20", s.Days[0].Date.Format("2006-01-02"))
	assert.Equal(t, Day{Date: s.Days[0].Date, Sessions: 2, MBS: 2, BT: 1}, s.Days[0])
	assert.Equal(t, 1, s.Days[1].Sessions)
	assert.Equal(t, "2026-03-07", s.Days[13].Date.Format("2006-01-02"))
	assert.Equal(t, 1, s.Days[13].Sessions)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), 45)
	assert.Zero(t, s.Sessions)
	assert.Zero(t, s.MBSPercent())
	assert.Len(t, s.Days, Window)
}

func TestHoursMinutes(t *testing.T) {
	assert.Equal(t, "0h 45m", HoursMinutes(45))
	assert.Equal(t, "5h 15m", HoursMinutes(315))
}

func TestRender(t *testing.T) {
	today := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	Render(&buf, Compute([]journal.Entry{entry(3, 20, true, false)}, today, 45))

	out := buf.String()
	assert.Contains(t, out, "Completed Sessions:  1")
	assert.Contains(t, out, "Total Focus Time:    0h 45m")
	assert.Contains(t, out, "Habit 'mbs':         1/1 (100.0%)")
	assert.Contains(t, out, "2026-03-20   | 1        | 1     | 0")

	buf.Reset()
	Render(&buf, Compute(nil, today, 45))
	assert.Contains(t, buf.String(), "No sessions in the last 14 days.")
}
