// Package stats summarizes the journal over the last two weeks.
package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rezmoss/focuscli/internal/journal"
)

// Window is the number of days covered, today included.
const Window = 14

const dayLayout = "2006-01-02"

type Day struct {
	Date     time.Time
	Sessions int
	MBS      int
	BT       int
}

type Summary struct {
	Sessions     int
	FocusMinutes int
	MBS          int
	BT           int
	// Days holds one row per day, today first.
	Days []Day
}

func (s Summary) MBSPercent() float64 { return percent(s.MBS, s.Sessions) }
func (s Summary) BTPercent() float64  { return percent(s.BT, s.Sessions) }

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Compute builds the summary for the Window days ending on today. Focus time
// is estimated as sessions times the configured session length.
func Compute(entries []journal.Entry, today time.Time, sessionMinutes int) Summary {
	noon := time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, today.Location())
	cutoff := noon.AddDate(0, 0, -Window).Format(dayLayout)

	byDay := map[string]*Day{}
	var s Summary
	for _, e := range entries {
		key := e.Timestamp.Format(dayLayout)
		if key <= cutoff {
			continue
		}
		s.Sessions++
		d := byDay[key]
		if d == nil {
			d = &Day{}
			byDay[key] = d
		}
		d.Sessions++
		if e.MBS {
			s.MBS++
			d.MBS++
		}
		if e.BT {
			s.BT++
			d.BT++
		}
	}
	s.FocusMinutes = s.Sessions * sessionMinutes

	s.Days = make([]Day, 0, Window)
	for i := 0; i < Window; i++ {
		date := noon.AddDate(0, 0, -i)
		row := Day{Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())}
		if d := byDay[date.Format(dayLayout)]; d != nil {
			row.Sessions, row.MBS, row.BT = d.Sessions, d.MBS, d.BT
		}
		s.Days = append(s.Days, row)
	}
	return s
}

// HoursMinutes renders minutes as "5h 15m".
func HoursMinutes(mins int) string {
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// Render prints the summary and the per-day table.
func Render(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Statistics - Last %d Days\n", Window)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	if s.Sessions == 0 {
		fmt.Fprintf(w, "No sessions in the last %d days.\n", Window)
		return
	}
	fmt.Fprintf(w, "%-20s %d\n", "Completed Sessions:", s.Sessions)
	fmt.Fprintf(w, "%-20s %s\n", "Total Focus Time:", HoursMinutes(s.FocusMinutes))
	fmt.Fprintf(w, "%-20s %d/%d (%.1f%%)\n", "Habit 'mbs':", s.MBS, s.Sessions, s.MBSPercent())
	fmt.Fprintf(w, "%-20s %d/%d (%.1f%%)\n", "Habit 'bt':", s.BT, s.Sessions, s.BTPercent())
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "%-12s | %-8s | %-5s | %s\n", "Day", "Sessions", "MBS", "BT")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, d := range s.Days {
		fmt.Fprintf(w, "%-12s | %-8d | %-5d | %d\n", d.Date.Format(dayLayout), d.Sessions, d.MBS, d.BT)
	}
	fmt.Fprintln(w, strings.Repeat("-", 50))
}
