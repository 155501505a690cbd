// Package tui provides the Bubble Tea host for the simulation.
// It handles the terminal UI loop, input mapping, menus and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// pulseEndMsg reverts a node-hit pulse. attempt ties it to the run that
// scheduled it so a stale revert cannot touch a restarted level.
type pulseEndMsg struct {
	attempt int
}

func pulseCmd(d time.Duration, attempt int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return pulseEndMsg{attempt: attempt}
	})
}

// outcomeMsg reveals the result screen once the outcome delay has passed.
type outcomeMsg struct {
	attempt int
}

func outcomeCmd(d time.Duration, attempt int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return outcomeMsg{attempt: attempt}
	})
}
