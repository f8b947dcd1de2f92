// Package tui is the interactive focus timer: a bubbletea program that
// drives the session state machine once a second and records completed
// sessions in the journal.
package tui

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rezmoss/focuscli/internal/clock"
	"github.com/rezmoss/focuscli/internal/journal"
	"github.com/rezmoss/focuscli/internal/quotes"
	"github.com/rezmoss/focuscli/internal/session"
	"github.com/rezmoss/focuscli/internal/settings"
	"github.com/rezmoss/focuscli/internal/stats"
)

const (
	appTitle = "Focus"
	maxStars = 5
)

type mode int

const (
	modeIdle mode = iota
	modeSession
	modeHabits
	modeConfirmCancel
	modeConfirmQuit
	modeBackup
	modeStats
)

// Config carries the model's collaborators.
type Config struct {
	Clock    clock.Clock
	Journal  *journal.Journal
	Settings settings.Settings
	// Store persists settings changes (backup reminder date). May be nil.
	Store *settings.Store
	// SettingsInvalid means Settings came from a file with invalid values.
	// Nothing is written back in that case.
	SettingsInvalid bool
	Quotes          *quotes.Deck
	Logger          *zap.Logger
	// Bell receives the terminal bell. Nil disables sound.
	Bell io.Writer
	// Changes signals that the journal was modified on disk. May be nil.
	Changes <-chan struct{}
	// Theme is a resolved palette name (light or dark).
	Theme string
	// Task pre-fills the task input.
	Task string
}

// Model is the bubbletea model for the focus timer.
type Model struct {
	clock    clock.Clock
	journal  *journal.Journal
	settings settings.Settings
	store    *settings.Store
	readOnly bool
	deck     *quotes.Deck
	logger   *zap.Logger
	bell     io.Writer
	changes  <-chan struct{}

	timer  *session.Timer
	mode   mode
	prev   mode
	keys   keyMap
	styles styles
	input  textinput.Model
	bar    progress.Model
	help   help.Model

	quote       string
	habits      session.Habits
	habitCursor int
	limitWarned bool
	streak      int
	today       int
	summary     stats.Summary
	hasLog      bool
	notice      string
	errMsg      string
	width       int
	height      int
}

type tickMsg time.Time

type journalChangedMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return journalChangedMsg{}
	}
}

// New builds the model, loading today's counts and checking whether the
// backup reminder is due.
func New(cfg Config) Model {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Quotes == nil {
		cfg.Quotes = quotes.NewDeck(nil, nil)
	}

	ti := textinput.New()
	ti.Placeholder = "Task name"
	ti.CharLimit = 200
	ti.Width = 40
	ti.SetValue(cfg.Task)
	ti.Focus()

	m := Model{
		clock:    cfg.Clock,
		journal:  cfg.Journal,
		settings: cfg.Settings,
		store:    cfg.Store,
		readOnly: cfg.SettingsInvalid,
		deck:     cfg.Quotes,
		logger:   cfg.Logger,
		bell:     cfg.Bell,
		changes:  cfg.Changes,
		timer:    &session.Timer{},
		keys:     defaultKeys(),
		styles:   newStyles(PaletteFor(cfg.Theme)),
		input:    ti,
		bar:      progress.New(progress.WithSolidFill(string(PaletteFor(cfg.Theme).GreenDark)), progress.WithoutPercentage(), progress.WithWidth(40)),
		help:     help.New(),
	}

	now := m.clock.Now()
	m.refresh(now)
	m.checkBackup(now)
	return m
}

func (m *Model) checkBackup(now time.Time) {
	due, changed := m.settings.CheckBackup(now)
	if changed {
		m.saveSettings()
	}
	if due {
		m.logger.Info("Time for backup prompt", zap.String("last_prompt", m.settings.LastBackupPromptDate))
		m.mode = modeBackup
	}
}

func (m *Model) saveSettings() {
	if m.store == nil {
		return
	}
	if m.readOnly {
		m.logger.Warn("Settings not saved, config file has invalid values", zap.String("path", m.store.Path()))
		return
	}
	date := m.settings.LastBackupPromptDate
	err := m.store.Update(func(st *settings.Settings) error {
		st.LastBackupPromptDate = date
		return nil
	})
	if err != nil {
		m.logger.Error("Could not save settings", zap.Error(err))
		m.errMsg = "Could not save settings."
	}
}

// refresh re-reads the journal for the counters shown on screen. Read
// errors are logged and show as zero.
func (m *Model) refresh(now time.Time) {
	m.streak, m.today, m.hasLog = 0, 0, false
	m.summary = stats.Compute(nil, now, m.settings.SessionDurationMinutes)
	if m.journal == nil {
		return
	}
	exists, err := m.journal.Exists()
	if err != nil {
		m.logger.Warn("Could not stat log file", zap.Error(err))
		return
	}
	m.hasLog = exists
	entries, err := m.journal.Entries()
	if err != nil {
		m.logger.Warn("Could not read log file", zap.String("path", m.journal.Path()), zap.Error(err))
		return
	}
	m.streak = journal.Streak(entries, now)
	m.today = journal.CountOn(entries, now)
	m.summary = stats.Compute(entries, now, m.settings.SessionDurationMinutes)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(), waitForChange(m.changes), tea.SetWindowTitle(appTitle))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := min(msg.Width-12, 56)
		if w < 20 {
			w = 20
		}
		m.bar.Width = w
		m.input.Width = w - 4
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		cmds := m.onTick()
		return m, tea.Batch(append(cmds, tickCmd())...)

	case journalChangedMsg:
		m.refresh(m.clock.Now())
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		m.notice = ""
		if msg.String() == "ctrl+c" {
			if m.mode == modeConfirmQuit {
				return m, tea.Quit
			}
			return m.requestQuit()
		}
		switch m.mode {
		case modeIdle:
			return m.updateIdle(msg)
		case modeSession:
			return m.updateSession(msg)
		case modeHabits:
			return m.updateHabits(msg)
		case modeConfirmCancel:
			return m.updateConfirmCancel(msg)
		case modeConfirmQuit:
			return m.updateConfirmQuit(msg)
		case modeBackup:
			return m.updateBackup(msg)
		case modeStats:
			if key.Matches(msg, m.keys.Back) {
				m.mode = modeIdle
			}
			return m, nil
		}
	}

	if m.mode == modeIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// onTick advances the timer and returns any side-effect commands.
func (m *Model) onTick() []tea.Cmd {
	now := m.clock.Now()
	var cmds []tea.Cmd

	if m.timer.Tick(now) {
		m.logger.Info("Session completed", zap.String("task", m.timer.Task()))
		m.mode = modeHabits
		m.habits = session.Habits{MBS: true, BT: true}
		m.habitCursor = 0
		cmds = append(cmds, m.ring())
	}

	if m.timer.ObstacleOverLimit(now, m.settings.ObstacleLimit()) && !m.limitWarned {
		m.limitWarned = true
		m.logger.Warn("Obstacle limit exceeded",
			zap.String("task", m.timer.Task()),
			zap.Int("limit_minutes", m.settings.ObstacleLimitMinutes))
		cmds = append(cmds, m.ring())
	}

	if m.settings.StatusIndicatorEnabled {
		cmds = append(cmds, tea.SetWindowTitle(m.windowTitle(now)))
	}
	return cmds
}

func (m Model) windowTitle(now time.Time) string {
	if !m.timer.State().Active() {
		return appTitle
	}
	return fmt.Sprintf("%s · %s", session.IndicatorText(m.timer.Remaining(now)), appTitle)
}

func (m Model) ring() tea.Cmd {
	if m.bell == nil || !m.settings.ObstacleSoundEnabled {
		return nil
	}
	w := m.bell
	return func() tea.Msg {
		_, _ = io.WriteString(w, "\a")
		return nil
	}
}

func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if m.timer.State() == session.Idle {
		m.logger.Info("Application closed")
		return m, tea.Quit
	}
	m.prev = m.mode
	m.mode = modeConfirmQuit
	return m, nil
}

func (m Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Start):
		return m.startSession()
	case key.Matches(msg, m.keys.Stats):
		m.refresh(m.clock.Now())
		m.mode = modeStats
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startSession() (tea.Model, tea.Cmd) {
	now := m.clock.Now()
	if err := m.timer.Begin(m.input.Value(), m.settings.SessionDuration(), now); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.errMsg = ""
	m.limitWarned = false
	m.quote = m.deck.Draw()
	m.mode = modeSession
	m.input.Blur()
	m.logger.Info("Session started",
		zap.String("task", m.timer.Task()),
		zap.Time("ends", m.timer.End()))
	var cmd tea.Cmd
	if m.settings.StatusIndicatorEnabled {
		cmd = tea.SetWindowTitle(m.windowTitle(now))
	}
	return m, cmd
}

func (m Model) updateSession(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.clock.Now()
	switch {
	case key.Matches(msg, m.keys.Obstacle):
		st, err := m.timer.ToggleObstacle(now)
		if err != nil {
			return m, nil
		}
		if st == session.Obstacle {
			m.limitWarned = false
			m.logger.Info("Obstacle started", zap.Int("count", m.timer.ObstacleCount()))
		} else {
			m.logger.Info("Obstacle ended",
				zap.Duration("total", m.timer.ObstacleTotal()),
				zap.Time("ends", m.timer.End()))
		}
	case key.Matches(msg, m.keys.Cancel):
		m.prev = m.mode
		m.mode = modeConfirmCancel
	case key.Matches(msg, m.keys.AddFive):
		m.extend(5 * time.Minute)
	case key.Matches(msg, m.keys.AddOne):
		m.extend(time.Minute)
	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()
	}
	return m, nil
}

func (m *Model) extend(d time.Duration) {
	if err := m.timer.Extend(d); err != nil {
		return
	}
	m.logger.Info("Session extended",
		zap.Duration("added", d),
		zap.String("new_end", m.timer.End().Format("15:04:05")))
}

func (m Model) updateHabits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.MBS):
		m.habits.MBS = !m.habits.MBS
	case key.Matches(msg, m.keys.BT):
		m.habits.BT = !m.habits.BT
	case key.Matches(msg, m.keys.Up):
		m.habitCursor = 0
	case key.Matches(msg, m.keys.Down):
		m.habitCursor = 1
	case key.Matches(msg, m.keys.Toggle):
		if m.habitCursor == 0 {
			m.habits.MBS = !m.habits.MBS
		} else {
			m.habits.BT = !m.habits.BT
		}
	case key.Matches(msg, m.keys.Save):
		return m.completeSession()
	}
	return m, nil
}

func (m Model) completeSession() (tea.Model, tea.Cmd) {
	now := m.clock.Now()
	task := m.timer.Task()
	entry, err := m.timer.Finish(m.habits, now)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	if !m.settings.LogObstacleDetails {
		entry.ObstacleCount = 0
		entry.ObstacleMinutes = 0
	}
	if m.journal != nil {
		if err := m.journal.Append(entry); err != nil {
			m.logger.Error("Could not write log entry", zap.Error(err))
			m.errMsg = fmt.Sprintf("Could not save session: %v", err)
		} else {
			m.logger.Info("Session logged",
				zap.String("task", entry.Task),
				zap.Bool("mbs", entry.MBS),
				zap.Bool("bt", entry.BT),
				zap.Int("obstacles", entry.ObstacleCount))
			m.notice = fmt.Sprintf("Congratulations! You have completed the session for '%s'.", task)
		}
	}
	m.backToIdle(now)
	return m, tea.SetWindowTitle(appTitle)
}

func (m *Model) backToIdle(now time.Time) {
	m.mode = modeIdle
	m.quote = ""
	m.input.Reset()
	m.input.Focus()
	m.refresh(now)
}

func (m Model) updateConfirmCancel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		if err := m.timer.Cancel(); err != nil && !errors.Is(err, session.ErrNotActive) {
			m.errMsg = err.Error()
		}
		m.logger.Info("Session cancelled")
		m.backToIdle(m.clock.Now())
		return m, tea.SetWindowTitle(appTitle)
	case key.Matches(msg, m.keys.No):
		m.mode = m.prev
	}
	return m, nil
}

func (m Model) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.logger.Info("Application closed during a session", zap.String("state", m.timer.State().String()))
		return m, tea.Quit
	case key.Matches(msg, m.keys.No):
		m.mode = m.prev
	}
	return m, nil
}

func (m Model) updateBackup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		now := m.clock.Now()
		if m.journal != nil {
			if err := m.journal.Clear(); err != nil {
				m.logger.Error("Could not clear log file", zap.Error(err))
				m.errMsg = fmt.Sprintf("Could not clear log file: %v", err)
				m.mode = modeIdle
				return m, nil
			}
		}
		m.logger.Info("Log file content has been cleared, header preserved")
		m.settings.MarkBackupPrompted(now)
		m.saveSettings()
		m.notice = "The log file has been cleared. The headers have been preserved."
		m.refresh(now)
		m.mode = modeIdle
	case key.Matches(msg, m.keys.No):
		m.mode = modeIdle
	}
	return m, nil
}
