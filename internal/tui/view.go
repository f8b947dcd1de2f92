package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rezmoss/focuscli/internal/session"
	"github.com/rezmoss/focuscli/internal/stats"
)

func (m Model) View() string {
	now := m.clock.Now()

	var body string
	switch m.mode {
	case modeIdle:
		body = m.viewIdle()
	case modeSession:
		body = m.viewSession()
	case modeHabits:
		body = m.viewHabits()
	case modeConfirmCancel:
		body = m.viewDialog("Cancel Session",
			"Are you sure you want to cancel the current session? Progress will not be saved.")
	case modeConfirmQuit:
		body = m.viewDialog("Exit?", "A session is in progress. Are you sure you want to exit?")
	case modeBackup:
		body = m.viewDialog("Backup Reminder",
			"It's been 3 or more days. It's recommended to create a backup of your 'log.csv' file.\n\n"+
				"Press y to clear the log file for a new period.\n"+
				"Press n to be reminded later.")
	case modeStats:
		body = m.viewStats()
	}

	header := m.styles.header.Render(fmt.Sprintf("⏱  %s - %s", appTitle, now.Format("Jan 2, 2006 15:04")))

	var footer []string
	if m.notice != "" {
		footer = append(footer, m.styles.success.Render(m.notice))
	}
	if m.errMsg != "" {
		footer = append(footer, m.styles.errText.Render(m.errMsg))
	}
	footer = append(footer, m.help.ShortHelpView(m.keys.bindings(m.mode, m.timer.State() == session.Obstacle)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.styles.box.Render(body),
		strings.Join(footer, "\n"),
	)
	if m.width > 0 {
		content = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, content)
	}
	return content
}

func (m Model) viewIdle() string {
	streak := fmt.Sprintf("🔥 Streak: %d days", m.streak)
	count := fmt.Sprintf("Completed Today: %d", m.today)
	gap := m.bar.Width - lipgloss.Width(streak) - lipgloss.Width(count)
	if gap < 2 {
		gap = 2
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.heading.Render("What do you want to focus on now?"),
		"",
		m.styles.input.Render(m.input.View()),
		"",
		m.styles.success.Render("▶ Start Session")+m.styles.subtle.Render(" (enter)"),
		"",
		m.styles.heading.Render(streak)+strings.Repeat(" ", gap)+m.styles.normal.Render(count),
		m.stars(),
	)
}

func (m Model) stars() string {
	var b strings.Builder
	for i := 0; i < maxStars; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		if i < m.today {
			b.WriteString(m.styles.starOn.Render("★"))
		} else {
			b.WriteString(m.styles.starOff.Render("☆"))
		}
	}
	return b.String()
}

func (m Model) viewSession() string {
	now := m.clock.Now()
	remaining := m.timer.Remaining(now)

	bar := m.bar
	clockStyle := m.styles.running
	if m.timer.State() == session.Obstacle {
		bar.FullColor = string(m.styles.palette.OrangeDark)
		clockStyle = m.styles.obstacle
	} else {
		bar.FullColor = string(m.styles.palette.GreenDark)
	}

	lines := []string{
		m.styles.heading.Width(m.bar.Width).Render(m.timer.Task()),
		m.stars(),
		"",
		bar.ViewAs(m.timer.Progress(now)),
		clockStyle.Padding(0, 2).Render(session.FormatClock(remaining)),
		m.styles.subtle.Render(fmt.Sprintf("ends at %s", m.timer.End().Format("15:04"))),
	}

	if m.timer.State() == session.Obstacle {
		lines = append(lines, "", m.styles.warning.Render(
			"Break duration: "+session.FormatClock(m.timer.ObstacleElapsed(now))))
		if m.timer.ObstacleOverLimit(now, m.settings.ObstacleLimit()) {
			lines = append(lines, m.styles.errText.Render(
				fmt.Sprintf("Obstacle limit of %d min exceeded", m.settings.ObstacleLimitMinutes)))
		}
	}

	if m.quote != "" {
		lines = append(lines, "", m.styles.quote.Width(m.bar.Width).Render(`"`+m.quote+`"`))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewHabits() string {
	check := func(on bool) string {
		if on {
			return m.styles.success.Render("[x]")
		}
		return m.styles.subtle.Render("[ ]")
	}
	cursor := func(i int) string {
		if m.habitCursor == i {
			return m.styles.accent.Render("›")
		}
		return " "
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.success.Render("Session Completed!"),
		m.styles.normal.Render(fmt.Sprintf("Congratulations! You have completed the session for: '%s'", m.timer.Task())),
		"",
		m.styles.heading.Render("Which good habits did you maintain?"),
		fmt.Sprintf("%s %s mbs (music without lyrics)", cursor(0), check(m.habits.MBS)),
		fmt.Sprintf("%s %s bt (without phone)", cursor(1), check(m.habits.BT)),
	)
}

func (m Model) viewDialog(title, message string) string {
	width := m.bar.Width
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.heading.Render(title),
		"",
		m.styles.normal.Width(width).Render(message),
	)
}

func (m Model) viewStats() string {
	title := m.styles.heading.Render(fmt.Sprintf("Statistics - Last %d Days", stats.Window))
	if !m.hasLog {
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			m.styles.normal.Render("No data to display.\nLog file does not exist or is empty."))
	}
	s := m.summary
	if s.Sessions == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			m.styles.normal.Render(fmt.Sprintf("No sessions in the last %d days.", stats.Window)))
	}

	row := func(label, value string, style lipgloss.Style) string {
		return fmt.Sprintf("%-20s %s", label, style.Render(value))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %8s %5s %5s\n", "Day", "Sessions", "MBS", "BT")
	for _, d := range s.Days {
		fmt.Fprintf(&b, "%-12s %8d %5d %5d\n", d.Date.Format("2006-01-02"), d.Sessions, d.MBS, d.BT)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		row("Completed Sessions:", fmt.Sprintf("%d", s.Sessions), m.styles.success),
		row("Total Focus Time:", stats.HoursMinutes(s.FocusMinutes), m.styles.accent),
		row("Habit 'mbs':", fmt.Sprintf("%d/%d (%.1f%%)", s.MBS, s.Sessions, s.MBSPercent()), m.styles.normal),
		row("Habit 'bt':", fmt.Sprintf("%d/%d (%.1f%%)", s.BT, s.Sessions, s.BTPercent()), m.styles.normal),
		"",
		m.styles.subtle.Render(strings.TrimRight(b.String(), "\n")),
	)
}
