package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

// Stats layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show the summary sidebar
	sidebarWidth       = 26 // Width of the summary sidebar
)

// StatsKeyMap defines the key bindings for the stats screen.
type StatsKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Reset   key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k StatsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Reset, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k StatsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Reset, k.Back, k.Quit},
	}
}

// DefaultStatsKeyMap returns default key bindings.
func DefaultStatsKeyMap() StatsKeyMap {
	return StatsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset progress"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b", "tab"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// StatsModel shows the player's progress and per-level run history.
type StatsModel struct {
	env         *Env
	progress    progress.Progress
	stats       map[int]*storage.LevelStats
	table       table.Model
	help        help.Model
	keys        StatsKeyMap
	width       int
	height      int
	confirming  bool // reset prompt is open
	notice      string
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewStatsModel creates a stats screen for the session's player.
func NewStatsModel(env *Env, width, height int) StatsModel {
	h := help.New()
	h.ShowAll = false

	m := StatsModel{
		env:         env,
		keys:        DefaultStatsKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *StatsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Level", Width: 6},
		{Title: "Tier", Width: 7},
		{Title: "Status", Width: 9},
		{Title: "Best", Width: 6},
		{Title: "Wins", Width: 7},
		{Title: "Fastest", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load refreshes progress and run statistics.
func (m *StatsModel) load() {
	if m.env.Progress != nil {
		m.progress = m.env.Progress.Progress()
	} else {
		m.progress = progress.New()
	}

	m.stats = nil
	if m.env.Store != nil {
		stats, err := m.env.Store.AllLevelStats(m.env.Player)
		if err != nil {
			m.env.log().Warn("could not load level stats", "error", err)
		} else {
			m.stats = stats
		}
	}
	m.updateTableRows()
}

// updateTableRows rebuilds one row per catalog level.
func (m *StatsModel) updateTableRows() {
	levels := m.env.Catalog.Levels()
	rows := make([]table.Row, len(levels))
	for i, l := range levels {
		status := "locked"
		switch {
		case m.progress.CompletedLevels.Has(l.ID):
			status = "complete"
		case m.progress.IsLevelUnlocked(l.ID):
			status = "open"
		}

		best, wins, fastest := "-", "-", "-"
		if st, ok := m.stats[l.ID]; ok {
			wins = fmt.Sprintf("%d/%d", st.Wins, st.Attempts)
			if st.Wins > 0 {
				best = fmt.Sprintf("%d", st.BestScore)
				fastest = formatDuration(st.FastestWin)
			}
		}

		rows[i] = table.Row{
			fmt.Sprintf("%02d", l.ID),
			l.Difficulty.DisplayName(),
			status,
			best,
			wins,
			fastest,
		}
	}
	m.table.SetRows(rows)
}

// Init initializes the stats model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the stats screen.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirming {
			return m.handleConfirm(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.Reset):
			m.confirming = true
			m.notice = ""
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m StatsModel) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirming = false
		m.notice = "Progress reset"
		if err := m.resetProgress(); err != nil {
			m.env.log().Error("could not reset progress", "error", err)
			m.notice = "Reset failed: " + err.Error()
		}
		m.load()
	case key.Matches(msg, m.keys.Cancel):
		m.confirming = false
	}
	return m, nil
}

// resetProgress clears the progress record and the player's run history.
func (m StatsModel) resetProgress() error {
	if m.env.Progress != nil {
		if err := m.env.Progress.Reset(); err != nil {
			return err
		}
	}
	if m.env.Store != nil {
		if err := m.env.Store.ClearRuns(m.env.Player); err != nil {
			return err
		}
	}
	m.env.log().Info("progress reset", "player", m.env.Player)
	return nil
}

// View renders the stats screen.
func (m StatsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(centerText("STATS", m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	tableRendered := tableStyle.Render(m.table.View())

	if m.showSidebar {
		sidebarStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(sidebarWidth).
			Padding(0, 1)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(m.summary()), "  ", tableRendered))
	} else {
		b.WriteString(m.summary())
		b.WriteString("\n")
		b.WriteString(tableRendered)
	}

	b.WriteString("\n")
	switch {
	case m.confirming:
		b.WriteString(menuWarningStyle.Render("Reset all progress and run history? (y/n)"))
	case m.notice != "":
		b.WriteString(menuSubtitleStyle.Render(m.notice))
	default:
		helpStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
		b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	}

	return b.String()
}

// summary renders the progress totals.
func (m StatsModel) summary() string {
	p := m.progress
	var b strings.Builder
	fmt.Fprintf(&b, "Completed   %d / %d\n", len(p.CompletedLevels), len(m.env.Catalog.Levels()))
	fmt.Fprintf(&b, "Fragments   %d\n", p.Fragments)
	b.WriteString("\nPatterns\n")
	writeNames(&b, p.UnlockedPatterns.Sorted())
	b.WriteString("\nCore states\n")
	writeNames(&b, p.UnlockedCoreStates.Sorted())
	return b.String()
}

func writeNames(b *strings.Builder, names []string) {
	if len(names) == 0 {
		b.WriteString("  none yet\n")
		return
	}
	for _, n := range names {
		b.WriteString("  " + n + "\n")
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// IsGoingBack returns true if user wants to go back to menu.
func (m StatsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m StatsModel) IsQuitting() bool {
	return m.quitting
}

// Confirming reports whether the reset prompt is open.
func (m StatsModel) Confirming() bool {
	return m.confirming
}
