package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start    key.Binding
	Stats    key.Binding
	Quit     key.Binding
	Obstacle key.Binding
	Resume   key.Binding
	Cancel   key.Binding
	AddFive  key.Binding
	AddOne   key.Binding
	MBS      key.Binding
	BT       key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Save     key.Binding
	Yes      key.Binding
	No       key.Binding
	Back     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start session")),
		Stats:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "statistics")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
		Obstacle: key.NewBinding(key.WithKeys("o", " "), key.WithHelp("o", "obstacle")),
		Resume:   key.NewBinding(key.WithKeys("o", " "), key.WithHelp("o", "resume")),
		Cancel:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel")),
		AddFive:  key.NewBinding(key.WithKeys("+", "5"), key.WithHelp("+", "+5 min")),
		AddOne:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "+1 min")),
		MBS:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle mbs")),
		BT:       key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle bt")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Save:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save and continue")),
		Yes:      key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "yes")),
		No:       key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
		Back:     key.NewBinding(key.WithKeys("tab", "esc", "q"), key.WithHelp("esc", "back")),
	}
}

// bindings lists the keys shown in the help line for a mode.
func (k keyMap) bindings(m mode, obstacle bool) []key.Binding {
	switch m {
	case modeIdle:
		return []key.Binding{k.Start, k.Stats, k.Quit}
	case modeSession:
		pause := k.Obstacle
		if obstacle {
			pause = k.Resume
		}
		return []key.Binding{pause, k.Cancel, k.AddFive, k.AddOne, k.Quit}
	case modeHabits:
		return []key.Binding{k.MBS, k.BT, k.Toggle, k.Save}
	case modeStats:
		return []key.Binding{k.Back}
	case modeConfirmCancel, modeConfirmQuit, modeBackup:
		return []key.Binding{k.Yes, k.No}
	}
	return nil
}
