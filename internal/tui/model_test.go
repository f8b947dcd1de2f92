package tui

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezmoss/focuscli/internal/clock"
	"github.com/rezmoss/focuscli/internal/journal"
	"github.com/rezmoss/focuscli/internal/quotes"
	"github.com/rezmoss/focuscli/internal/session"
	"github.com/rezmoss/focuscli/internal/settings"
)

var morning = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	clock   *clock.FakeClock
	fs      afero.Fs
	journal *journal.Journal
	store   *settings.Store
	bell    *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fs := afero.NewMemMapFs()
	return &harness{
		clock:   clock.Fake(morning),
		fs:      fs,
		journal: journal.New(fs, "/data").WithLocation(time.UTC),
		store:   settings.NewStore(fs, "/data"),
		bell:    &bytes.Buffer{},
	}
}

func (h *harness) model(st settings.Settings) Model {
	return New(Config{
		Clock:    h.clock,
		Journal:  h.journal,
		Settings: st,
		Store:    h.store,
		Quotes:   quotes.NewDeck([]string{"Stay on target."}, rand.New(rand.NewPCG(1, 1))),
		Bell:     h.bell,
		Theme:    settings.ThemeLight,
	})
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m = send(m, keyPress(string(r)))
	}
	return m
}

func TestNew_RecordsFirstBackupDate(t *testing.T) {
	h := newHarness(t)
	m := h.model(settings.Defaults())

	assert.Equal(t, modeIdle, m.mode)
	saved, err := h.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", saved.LastBackupPromptDate)
}

func TestNew_KeepsInvalidSettingsFile(t *testing.T) {
	h := newHarness(t)
	original := []byte(`{"session_duration_minutes": 700, "theme": "dark", "status_indicator_enabled": false}`)
	require.NoError(t, afero.WriteFile(h.fs, h.store.Path(), original, 0o644))

	st, err := h.store.Load()
	require.ErrorIs(t, err, settings.ErrInvalid)

	m := New(Config{
		Clock:           h.clock,
		Journal:         h.journal,
		Settings:        st,
		Store:           h.store,
		SettingsInvalid: true,
		Theme:           settings.ThemeDark,
	})
	assert.Equal(t, modeIdle, m.mode)
	assert.Empty(t, m.errMsg)

	raw, err := afero.ReadFile(h.fs, h.store.Path())
	require.NoError(t, err)
	assert.Equal(t, string(original), string(raw))
}

func TestNew_DoesNotPersistEnvOverrides(t *testing.T) {
	t.Setenv("FOCUS_THEME", "dark")
	t.Setenv("FOCUS_SESSION_DURATION_MINUTES", "20")
	h := newHarness(t)

	st, err := h.store.Load()
	require.NoError(t, err)
	require.Equal(t, 20, st.SessionDurationMinutes)
	h.model(st)

	raw, err := afero.ReadFile(h.fs, h.store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"theme": "light"`)
	assert.Contains(t, string(raw), `"session_duration_minutes": 45`)
	assert.Contains(t, string(raw), `"last_backup_prompt_date": "2026-03-10"`)
}

func TestStartSession(t *testing.T) {
	h := newHarness(t)
	m := h.model(settings.Defaults())

	m = typeText(m, "deep work")
	m = send(m, keyPress("enter"))

	assert.Equal(t, modeSession, m.mode)
	assert.Equal(t, session.Running, m.timer.State())
	assert.Equal(t, "deep work", m.timer.Task())
	assert.Equal(t, morning.Add(45*time.Minute), m.timer.End())
	assert.Equal(t, "Stay on target.", m.quote)
	assert.Contains(t, m.View(), "00:45:00")
}

func TestSessionViewQuotesLiterally(t *testing.T) {
	h := newHarness(t)
	m := New(Config{
		Clock:    h.clock,
		Journal:  h.journal,
		Store:    h.store,
		Settings: settings.Defaults(),
		Quotes:   quotes.NewDeck([]string{`Say "now" \ act`}, rand.New(rand.NewPCG(1, 1))),
		Theme:    settings.ThemeLight,
	})
	m = send(m, keyPress("enter"))

	view := m.View()
	assert.Contains(t, view, `"Say "now" \ act"`)
	assert.NotContains(t, view, `\"`)
}

func TestStartSession_DefaultTask(t *testing.T) {
	h := newHarness(t)
	m := send(h.model(settings.Defaults()), keyPress("enter"))
	assert.Equal(t, "Task 2026-03-10", m.timer.Task())
}

func TestFullSessionIsLogged(t *testing.T) {
	h := newHarness(t)
	m := h.model(settings.Defaults())
	m = typeText(m, "report")
	m = send(m, keyPress("enter"))

	h.clock.Advance(10 * time.Minute)
	m = send(m, keyPress("o"))
	require.Equal(t, session.Obstacle, m.timer.State())
	h.clock.Advance(3 * time.Minute)
	m = send(m, keyPress("o"))
	require.Equal(t, session.Running, m.timer.State())

	h.clock.Advance(35 * time.Minute)
	m = send(m, tickMsg(h.clock.Now()))
	require.Equal(t, modeHabits, m.mode)
	assert.Equal(t, session.Habits{MBS: true, BT: true}, m.habits, "habits default to kept")
	assert.Contains(t, m.View(), "Which good habits did you maintain?")

	m = send(m, keyPress("b"), keyPress("enter"))

	assert.Equal(t, modeIdle, m.mode)
	assert.Equal(t, session.Idle, m.timer.State())
	assert.Equal(t, 1, m.today)
	assert.Equal(t, 1, m.streak)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.notice, "report")

	entries, err := h.journal.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "report", e.Task)
	assert.True(t, e.MBS)
	assert.False(t, e.BT)
	assert.True(t, e.PreNoon)
	assert.Equal(t, 1, e.ObstacleCount)
	assert.InDelta(t, 3.0, e.ObstacleMinutes, 1e-9)
}

func TestHabitsCursorToggle(t *testing.T) {
	h := newHarness(t)
	st := settings.Defaults()
	st.SessionDurationMinutes = 1
	m := send(h.model(st), keyPress("enter"))
	h.clock.Advance(time.Minute)
	m = send(m, tickMsg(h.clock.Now()))
	require.Equal(t, modeHabits, m.mode)

	m = send(m, keyPress(" "))
	assert.False(t, m.habits.MBS)
	m = send(m, keyPress("down"), keyPress(" "))
	assert.False(t, m.habits.BT)
}

func TestObstacleDetailsCanBeOmitted(t *testing.T) {
	h := newHarness(t)
	st := settings.Defaults()
	st.SessionDurationMinutes = 1
	st.LogObstacleDetails = false
	m := send(h.model(st), keyPress("enter"), keyPress("o"))
	h.clock.Advance(2 * time.Minute)
	m = send(m, keyPress("o"))
	h.clock.Advance(time.Minute)
	m = send(m, tickMsg(h.clock.Now()), keyPress("enter"))

	entries, err := h.journal.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].ObstacleCount)
	assert.Zero(t, entries[0].ObstacleMinutes)
}

func TestExtendSession(t *testing.T) {
	h := newHarness(t)
	m := send(h.model(settings.Defaults()), keyPress("enter"))

	m = send(m, keyPress("+"), keyPress("1"))
	assert.Equal(t, morning.Add(51*time.Minute), m.timer.End())

	m = send(m, keyPress("o"), keyPress("+"))
	assert.Equal(t, morning.Add(51*time.Minute), m.timer.End(), "no extension during an obstacle")
}

func TestObstacleLimitWarning(t *testing.T) {
	h := newHarness(t)
	m := send(h.model(settings.Defaults()), keyPress("enter"), keyPress("o"))

	h.clock.Advance(5 * time.Minute)
	m = send(m, tickMsg(h.clock.Now()))
	assert.False(t, m.limitWarned)
	assert.Contains(t, m.View(), "Break duration: 00:05:00")

	h.clock.Advance(6 * time.Minute)
	m = send(m, tickMsg(h.clock.Now()))
	assert.True(t, m.limitWarned)
	assert.Contains(t, m.View(), "Obstacle limit of 10 min exceeded")
}

func TestRing(t *testing.T) {
	h := newHarness(t)
	m := h.model(settings.Defaults())

	cmd := m.ring()
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "\a", h.bell.String())

	st := settings.Defaults()
	st.ObstacleSoundEnabled = false
	assert.Nil(t, h.model(st).ring())
}

func TestCancelSession(t *testing.T) {
	h := newHarness(t)
	m := send(h.model(settings.Defaults()), keyPress("enter"))

	m = send(m, keyPress("c"))
	require.Equal(t, modeConfirmCancel, m.mode)
	m = send(m, keyPress("n"))
	require.Equal(t, modeSession, m.mode)

	m = send(m, keyPress("c"), keyPress("y"))
	assert.Equal(t, modeIdle, m.mode)
	assert.Equal(t, session.Idle, m.timer.State())

	exists, err := h.journal.Exists()
	require.NoError(t, err)
	assert.False(t, exists, "cancelled sessions are not logged")
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	m := h.model(settings.Defaults())

	_, cmd := m.Update(keyPress("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = send(m, keyPress("enter"))
	next, cmd := m.Update(keyPress("ctrl+c"))
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, modeConfirmQuit, m.mode)

	m = send(m, keyPress("n"))
	assert.Equal(t, modeSession, m.mode)

	m = send(m, keyPress("esc"))
	_, cmd = m.Update(keyPress("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBackupPrompt(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.journal.Append(journal.Entry{Timestamp: morning.Add(-24 * time.Hour), Task: "old"}))

	st := settings.Defaults()
	st.LastBackupPromptDate = "2026-03-06"

	declined := send(h.model(st), keyPress("n"))
	assert.Equal(t, modeIdle, declined.mode)
	entries, err := h.journal.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1, "declining keeps the log")

	m := h.model(st)
	require.Equal(t, modeBackup, m.mode)
	assert.Contains(t, m.View(), "Backup Reminder")

	m = send(m, keyPress("y"))
	assert.Equal(t, modeIdle, m.mode)
	assert.Contains(t, m.notice, "cleared")

	entries, err = h.journal.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	saved, err := h.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", saved.LastBackupPromptDate)
}

func TestStatsView(t *testing.T) {
	h := newHarness(t)
	m := send(h.model(settings.Defaults()), keyPress("tab"))
	assert.Equal(t, modeStats, m.mode)
	assert.Contains(t, m.View(), "No data to display.")

	require.NoError(t, h.journal.Append(journal.Entry{Timestamp: morning.Add(-time.Hour), Task: "a", MBS: true}))
	m = send(m, keyPress("esc"), keyPress("tab"))
	view := m.View()
	assert.Contains(t, view, "Completed Sessions:")
	assert.Contains(t, view, "0h 45m")
	assert.Contains(t, view, "1/1 (100.0%)")

	m = send(m, keyPress("esc"))
	assert.Equal(t, modeIdle, m.mode)
}

func TestJournalChangeRefreshesCounts(t *testing.T) {
	h := newHarness(t)
	m := h.model(settings.Defaults())
	assert.Zero(t, m.today)

	require.NoError(t, h.journal.Append(journal.Entry{Timestamp: morning, Task: "elsewhere"}))
	m = send(m, journalChangedMsg{})
	assert.Equal(t, 1, m.today)
	assert.Equal(t, 1, m.streak)
	assert.Contains(t, m.View(), "Completed Today: 1")
}

func TestIdleView(t *testing.T) {
	h := newHarness(t)
	m := send(h.model(settings.Defaults()), tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, "What do you want to focus on now?")
	assert.Contains(t, view, "Streak: 0 days")
	assert.Contains(t, view, "☆")
}

func TestWindowTitle(t *testing.T) {
	h := newHarness(t)
	m := h.model(settings.Defaults())
	assert.Equal(t, "Focus", m.windowTitle(h.clock.Now()))

	m = send(m, keyPress("enter"))
	h.clock.Advance(30 * time.Second)
	assert.Equal(t, "45 · Focus", m.windowTitle(h.clock.Now()))
}

func TestResolveTheme(t *testing.T) {
	assert.Equal(t, settings.ThemeDark, ResolveTheme(settings.ThemeDark, nil))
	assert.Equal(t, settings.ThemeLight, ResolveTheme(settings.ThemeAuto, nil))
	assert.Equal(t, settings.ThemeLight, ResolveTheme("neon", nil))
	assert.Equal(t, PaletteFor(settings.ThemeLight), PaletteFor("neon"))
}
