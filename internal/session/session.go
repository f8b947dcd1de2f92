// Package session implements the focus timer state machine:
//
//	Idle → Running ⇄ Obstacle
//	Running → Completing → Idle
//	Running/Obstacle → Idle (cancel)
//
// The timer never reads the clock itself; every operation that depends on
// time takes now, which keeps it deterministic under test.
package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rezmoss/focuscli/internal/journal"
)

type State int

const (
	Idle State = iota
	Running
	Obstacle
	Completing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "SESSION_RUNNING"
	case Obstacle:
		return "OBSTACLE_ACTIVE"
	case Completing:
		return "COMPLETING"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Active reports whether a session is in progress (running or paused).
func (s State) Active() bool { return s == Running || s == Obstacle }

var (
	ErrNotIdle       = errors.New("a session is already in progress")
	ErrNotRunning    = errors.New("no running session")
	ErrNotActive     = errors.New("no active session")
	ErrNotCompleting = errors.New("session is not awaiting completion")
	ErrBadDuration   = errors.New("session duration must be positive")
)

// Habits are the self-reported flags recorded with a completed session.
type Habits struct {
	MBS bool // music without lyrics
	BT  bool // without phone
}

// Timer holds the state of the current session. The zero value is idle.
type Timer struct {
	state         State
	task          string
	start         time.Time
	end           time.Time
	obstacleStart time.Time
	frozenLeft    time.Duration
	obstacles     int
	obstacleTotal time.Duration
}

func (t *Timer) State() State                 { return t.state }
func (t *Timer) Task() string                 { return t.task }
func (t *Timer) Start() time.Time             { return t.start }
func (t *Timer) End() time.Time               { return t.end }
func (t *Timer) ObstacleCount() int           { return t.obstacles }
func (t *Timer) ObstacleTotal() time.Duration { return t.obstacleTotal }

// DefaultTask names a session started without a task.
func DefaultTask(now time.Time) string {
	return "Task " + now.Format("2006-01-02")
}

// Begin starts a session of length d on task.
func (t *Timer) Begin(task string, d time.Duration, now time.Time) error {
	if t.state != Idle {
		return ErrNotIdle
	}
	if d <= 0 {
		return ErrBadDuration
	}
	task = strings.TrimSpace(task)
	if task == "" {
		task = DefaultTask(now)
	}
	*t = Timer{
		state: Running,
		task:  task,
		start: now,
		end:   now.Add(d),
	}
	return nil
}

// Extend pushes the end of a running session back by d.
func (t *Timer) Extend(d time.Duration) error {
	if t.state != Running {
		return ErrNotRunning
	}
	t.end = t.end.Add(d)
	return nil
}

// ToggleObstacle pauses a running session or resumes a paused one. It
// returns the state after the toggle.
func (t *Timer) ToggleObstacle(now time.Time) (State, error) {
	switch t.state {
	case Running:
		t.state = Obstacle
		t.frozenLeft = t.end.Sub(now)
		t.obstacleStart = now
		t.obstacles++
	case Obstacle:
		t.state = Running
		t.obstacleTotal += now.Sub(t.obstacleStart)
		t.end = now.Add(t.frozenLeft)
	default:
		return t.state, ErrNotActive
	}
	return t.state, nil
}

// Cancel abandons the session without recording it.
func (t *Timer) Cancel() error {
	if !t.state.Active() {
		return ErrNotActive
	}
	*t = Timer{}
	return nil
}

// Tick moves a running session whose time is up into Completing. It
// returns true on that transition only.
func (t *Timer) Tick(now time.Time) bool {
	if t.state != Running || t.end.Sub(now) > 0 {
		return false
	}
	t.state = Completing
	return true
}

// Remaining is the time left: live while running, frozen during an obstacle.
func (t *Timer) Remaining(now time.Time) time.Duration {
	switch t.state {
	case Running:
		if left := t.end.Sub(now); left > 0 {
			return left
		}
	case Obstacle:
		return t.frozenLeft
	}
	return 0
}

// Progress is the fraction of the session still left, in [0,1]. During an
// obstacle the ring is drawn full.
func (t *Timer) Progress(now time.Time) float64 {
	switch t.state {
	case Obstacle:
		return 1
	case Running:
		total := t.end.Sub(t.start)
		if total <= 0 {
			return 0
		}
		p := float64(t.Remaining(now)) / float64(total)
		return math.Max(0, math.Min(1, p))
	}
	return 0
}

// ObstacleElapsed is the length of the current obstacle.
func (t *Timer) ObstacleElapsed(now time.Time) time.Duration {
	if t.state != Obstacle {
		return 0
	}
	return now.Sub(t.obstacleStart)
}

// ObstacleOverLimit reports whether the current obstacle has run past limit.
func (t *Timer) ObstacleOverLimit(now time.Time, limit time.Duration) bool {
	return t.state == Obstacle && limit > 0 && t.ObstacleElapsed(now) > limit
}

// Finish records the habits for a completed session and resets the timer.
// The returned entry is ready to append to the journal.
func (t *Timer) Finish(h Habits, now time.Time) (journal.Entry, error) {
	if t.state != Completing {
		return journal.Entry{}, ErrNotCompleting
	}
	e := journal.Entry{
		Timestamp:       now,
		Task:            t.task,
		MBS:             h.MBS,
		BT:              h.BT,
		PreNoon:         now.Hour() < 12,
		ObstacleCount:   t.obstacles,
		ObstacleMinutes: t.obstacleTotal.Minutes(),
	}
	*t = Timer{}
	return e, nil
}

// FormatClock renders d as HH:MM:SS; negative durations read 00:00:00.
func FormatClock(d time.Duration) string {
	if d < 0 {
		return "00:00:00"
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// IndicatorText is the compact remaining-minutes badge, rounded up.
func IndicatorText(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return fmt.Sprintf("%d", int(math.Ceil(d.Minutes())))
}
