package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// introPage is one screen of the how-to-play walkthrough.
type introPage struct {
	title string
	lines []string
}

var introPages = []introPage{
	{
		title: "Control the descent",
		lines: []string{
			"The core falls on its own.",
			"Tilt it left and right to steer it into the green target zone.",
			"Press space to spend a stabilizer and slow the fall for a moment.",
		},
	},
	{
		title: "Patterns matter",
		lines: []string{
			"Nodes along the way add to your score as the core sweeps past.",
			"Pattern triggers are worth the most. Red zones end the run.",
		},
	},
	{
		title: "Master the flow",
		lines: []string{
			"Thirty levels across three tiers, each one faster than the last.",
			"Complete a level to unlock the next.",
		},
	},
}

var (
	introTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	introDotOn      = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("●")
	introDotOff     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("○")
)

// IntroModel shows the first-run walkthrough.
type IntroModel struct {
	page     int
	width    int
	height   int
	done     bool
	quitting bool
}

// NewIntroModel creates the walkthrough on its first page.
func NewIntroModel(width, height int) IntroModel {
	return IntroModel{width: width, height: height}
}

// Init initializes the intro.
func (m IntroModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the intro.
func (m IntroModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "esc", "s":
			m.done = true
		case "left", "h", "a":
			if m.page > 0 {
				m.page--
			}
		case "right", "l", "d", "enter", " ":
			if m.page == len(introPages)-1 {
				m.done = true
			} else {
				m.page++
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// View renders the current page.
func (m IntroModel) View() string {
	if m.quitting {
		return ""
	}
	page := introPages[m.page]

	var b strings.Builder
	b.WriteString(strings.Repeat("\n", max(m.height/4, 1)))
	b.WriteString(centerText(introTitleStyle.Render(page.title), m.width))
	b.WriteString("\n\n")
	for _, line := range page.lines {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	dots := make([]string, len(introPages))
	for i := range introPages {
		dots[i] = introDotOff
		if i == m.page {
			dots[i] = introDotOn
		}
	}
	b.WriteString("\n")
	b.WriteString(centerText(strings.Join(dots, " "), m.width))
	b.WriteString("\n\n")

	hint := "→ next  ← back  esc skip"
	if m.page == len(introPages)-1 {
		hint = "enter begin  ← back"
	}
	b.WriteString(centerText(menuHintStyle.Render(hint), m.width))
	return b.String()
}

// Done reports whether the walkthrough was finished or skipped.
func (m IntroModel) Done() bool {
	return m.done
}

// IsQuitting returns true if user requested to quit.
func (m IntroModel) IsQuitting() bool {
	return m.quitting
}
