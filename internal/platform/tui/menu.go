package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/axiom-drop/internal/core"
	"github.com/vovakirdan/axiom-drop/internal/level"
)

// levelsPerRow is the width of the level grid; one row per difficulty tier.
const levelsPerRow = 10

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	menuTierStyle     = lipgloss.NewStyle().Width(8).Foreground(lipgloss.Color("12"))
	menuLockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	menuOpenStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	menuDoneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	menuCursorStyle   = lipgloss.NewStyle().Reverse(true).Bold(true)
	menuHintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	menuWarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	menuSubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// MenuModel is the Bubble Tea model for the level picker.
type MenuModel struct {
	env       *Env
	levels    []level.Level
	cursor    int
	width     int
	height    int
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	notice    string
	quitting  bool
	selected  *level.Level // Set when user picks an unlocked level
	openStats bool         // True if user pressed Tab for stats
}

// NewMenuModel creates a menu with the cursor on the first unlocked level
// that has not been completed yet.
func NewMenuModel(env *Env, cfg core.RuntimeConfig) MenuModel {
	levels := env.Catalog.Levels()
	m := MenuModel{
		env:       env,
		levels:    levels,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
	for i, l := range levels {
		if m.unlocked(l.ID) && !m.completed(l.ID) {
			m.cursor = i
			break
		}
	}
	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor-levelsPerRow >= 0 {
			m.cursor -= levelsPerRow
		}

	case MenuActionDown:
		if m.cursor+levelsPerRow < len(m.levels) {
			m.cursor += levelsPerRow
		}

	case MenuActionLeft:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionRight:
		if m.cursor < len(m.levels)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.levels) == 0 {
			return m, nil
		}
		lvl := m.levels[m.cursor]
		if !m.unlocked(lvl.ID) {
			m.notice = fmt.Sprintf("Complete level %d to unlock level %d", lvl.ID-1, lvl.ID)
			return m, nil
		}
		m.selected = &lvl

	case MenuActionStats:
		m.openStats = true
	}

	return m, nil
}

func (m MenuModel) unlocked(id int) bool {
	return m.env.Progress == nil || m.env.Progress.IsLevelUnlocked(id)
}

func (m MenuModel) completed(id int) bool {
	return m.env.Progress != nil && m.env.Progress.IsLevelCompleted(id)
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("A X I O M   D R O P"), m.width))
	b.WriteString("\n\n")

	if m.env.Progress != nil {
		p := m.env.Progress.Progress()
		summary := fmt.Sprintf("Completed %d / %d   Fragments %d", len(p.CompletedLevels), len(m.levels), p.Fragments)
		b.WriteString(centerText(menuSubtitleStyle.Render(summary), m.width))
		b.WriteString("\n\n")
	}

	for row := 0; row*levelsPerRow < len(m.levels); row++ {
		b.WriteString(centerText(m.renderRow(row), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(m.levels) > 0 {
		lvl := m.levels[m.cursor]
		info := fmt.Sprintf("%s · %s", lvl.Name, lvl.Description)
		b.WriteString(centerText(info, m.width))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(centerText(menuWarningStyle.Render(m.notice), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Arrows: Navigate  |  Enter: Play  |  Tab: Stats  |  Q: Quit"
	b.WriteString(centerText(menuHintStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

func (m MenuModel) renderRow(row int) string {
	start := row * levelsPerRow
	end := min(start+levelsPerRow, len(m.levels))

	label := ""
	if start < len(m.levels) {
		label = m.levels[start].Difficulty.DisplayName()
	}

	done := 0
	cells := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		id := m.levels[i].ID
		if m.completed(id) {
			done++
		}
		text := fmt.Sprintf(" %02d ", id)
		style := menuOpenStyle
		switch {
		case !m.unlocked(id):
			text = " ·· "
			style = menuLockedStyle
		case m.completed(id):
			style = menuDoneStyle
		}
		if i == m.cursor {
			style = style.Inherit(menuCursorStyle)
		}
		cells = append(cells, style.Render(text))
	}
	count := menuHintStyle.Render(fmt.Sprintf("  %d/%d", done, end-start))
	return menuTierStyle.Render(label) + strings.Join(cells, "") + count
}

// Selected returns the chosen level, or nil if none selected.
func (m MenuModel) Selected() *level.Level {
	return m.selected
}

// Cursor returns the index of the highlighted level.
func (m MenuModel) Cursor() int {
	return m.cursor
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsStats returns true if user requested the stats screen.
func (m MenuModel) WantsStats() bool {
	return m.openStats
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}
