// Package journal is the CSV log of completed focus sessions and the
// day-based queries over it (today's count, streak).
package journal

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	// FileName is the log file inside the data directory.
	FileName = "log.csv"

	// TimestampLayout is the local-time format of the timestamp column.
	TimestampLayout = "2006-01-02 15:04:05"

	dayLayout = "2006-01-02"
)

// Header is the column layout written at the top of a new log.
var Header = []string{
	"timestamp",
	"task_completed",
	"mbs",
	"bt",
	"is_pre_noon",
	"obstacle_count",
	"total_obstacle_time_min",
}

var (
	// ErrMalformed is returned when a row cannot be decoded.
	ErrMalformed = errors.New("malformed log row")
	// ErrNoLog is returned by operations that need an existing log file.
	ErrNoLog = errors.New("log file does not exist")
)

// Entry is one completed session.
type Entry struct {
	Timestamp       time.Time
	Task            string
	MBS             bool // music without lyrics
	BT              bool // without phone
	PreNoon         bool
	ObstacleCount   int
	ObstacleMinutes float64
}

// Journal reads and appends the log file.
type Journal struct {
	fs   afero.Fs
	path string
	loc  *time.Location
}

// New returns a Journal for log.csv inside dir. Timestamps are interpreted
// in the local zone.
func New(fs afero.Fs, dir string) *Journal {
	return &Journal{fs: fs, path: filepath.Join(dir, FileName), loc: time.Local}
}

// WithLocation returns a copy that reads timestamps in loc.
func (j *Journal) WithLocation(loc *time.Location) *Journal {
	cp := *j
	cp.loc = loc
	return &cp
}

func (j *Journal) Path() string { return j.path }

// Exists reports whether the log file is present.
func (j *Journal) Exists() (bool, error) {
	return afero.Exists(j.fs, j.path)
}

// Append writes e as a new row, creating the file and header as needed.
func (j *Journal) Append(e Entry) error {
	writeHeader := true
	if info, err := j.fs.Stat(j.path); err == nil {
		writeHeader = info.Size() == 0
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", j.path, err)
	}

	if dir := filepath.Dir(j.path); dir != "." && dir != "" {
		if err := j.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := j.fs.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", j.path, err)
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Header); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Write(encode(e)); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", j.path, err)
	}
	return f.Close()
}

func encode(e Entry) []string {
	return []string{
		e.Timestamp.Format(TimestampLayout),
		e.Task,
		flag(e.MBS),
		flag(e.BT),
		flag(e.PreNoon),
		strconv.Itoa(e.ObstacleCount),
		formatMinutes(e.ObstacleMinutes),
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// formatMinutes rounds to two decimals and always keeps a fractional part,
// so whole numbers read "3.0".
func formatMinutes(m float64) string {
	m = math.Round(m*100) / 100
	s := strconv.FormatFloat(m, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Entries returns every row in file order. A missing file has no entries.
func (j *Journal) Entries() ([]Entry, error) {
	f, err := j.fs.Open(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", j.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["timestamp"]; !ok {
		return nil, fmt.Errorf("%w: no timestamp column", ErrMalformed)
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		e, err := j.decode(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (j *Journal) decode(rec []string, cols map[string]int) (Entry, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var e Entry
	ts, err := time.ParseInLocation(TimestampLayout, field("timestamp"), j.loc)
	if err != nil {
		return e, fmt.Errorf("%w: timestamp: %v", ErrMalformed, err)
	}
	e.Timestamp = ts
	e.Task = field("task_completed")
	e.MBS = field("mbs") == "1"
	e.BT = field("bt") == "1"
	e.PreNoon = field("is_pre_noon") == "1"
	if v := field("obstacle_count"); v != "" {
		if e.ObstacleCount, err = strconv.Atoi(v); err != nil {
			return e, fmt.Errorf("%w: obstacle_count: %v", ErrMalformed, err)
		}
	}
	if v := field("total_obstacle_time_min"); v != "" {
		if e.ObstacleMinutes, err = strconv.ParseFloat(v, 64); err != nil {
			return e, fmt.Errorf("%w: total_obstacle_time_min: %v", ErrMalformed, err)
		}
	}
	return e, nil
}

// CountOn returns the number of sessions completed on the calendar day of day.
func (j *Journal) CountOn(day time.Time) (int, error) {
	entries, err := j.Entries()
	if err != nil {
		return 0, err
	}
	return CountOn(entries, day), nil
}

// CountOn counts entries on the calendar day of day.
func CountOn(entries []Entry, day time.Time) int {
	key := day.Format(dayLayout)
	n := 0
	for _, e := range entries {
		if e.Timestamp.Format(dayLayout) == key {
			n++
		}
	}
	return n
}

// Streak returns the number of consecutive days, ending today, with at least
// one completed session.
func (j *Journal) Streak(today time.Time) (int, error) {
	entries, err := j.Entries()
	if err != nil {
		return 0, err
	}
	return Streak(entries, today), nil
}

// Streak is zero unless the most recent session day is today; it then counts
// back one day at a time until a day without sessions.
func Streak(entries []Entry, today time.Time) int {
	if len(entries) == 0 {
		return 0
	}
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[e.Timestamp.Format(dayLayout)] = struct{}{}
	}
	sorted := make([]string, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	if sorted[0] != today.Format(dayLayout) {
		return 0
	}
	streak := 0
	expected := time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, today.Location())
	for _, d := range sorted {
		if d != expected.Format(dayLayout) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// Clear empties the log but keeps its header line. A missing file is left alone.
func (j *Journal) Clear() error {
	f, err := j.fs.Open(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", j.path, err)
	}
	header, err := bufio.NewReader(f).ReadString('\n')
	f.Close()
	if err != nil && err != io.EOF {
		return fmt.Errorf("read header: %w", err)
	}
	if err := afero.WriteFile(j.fs, j.path, []byte(header), 0o644); err != nil {
		return fmt.Errorf("clear %s: %w", j.path, err)
	}
	return nil
}

// Backup copies the log next to itself as log-YYYYMMDD-HHMMSS.csv and
// returns the new path.
func (j *Journal) Backup(now time.Time) (string, error) {
	data, err := afero.ReadFile(j.fs, j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoLog
		}
		return "", fmt.Errorf("read %s: %w", j.path, err)
	}
	ext := filepath.Ext(FileName)
	name := strings.TrimSuffix(FileName, ext) + "-" + now.Format("20060102-150405") + ext
	dst := filepath.Join(filepath.Dir(j.path), name)
	if err := afero.WriteFile(j.fs, dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}
