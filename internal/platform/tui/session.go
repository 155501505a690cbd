package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/axiom-drop/internal/core"
)

// sessionScreen is the screen a session is showing.
type sessionScreen int

const (
	screenIntro sessionScreen = iota
	screenMenu
	screenGame
	screenStats
)

// SessionModel manages the full flow: intro -> menu -> game/stats -> menu.
// This is the top-level model for local play and SSH sessions.
type SessionModel struct {
	env      *Env
	config   core.RuntimeConfig
	screen   sessionScreen
	intro    IntroModel
	menu     MenuModel
	game     *GameModel
	stats    *StatsModel
	quitting bool
}

// NewSessionModel creates a session. The intro is shown until the player
// has been through it once.
func NewSessionModel(env *Env, cfg core.RuntimeConfig) SessionModel {
	m := SessionModel{
		env:    env,
		config: cfg,
		screen: screenMenu,
		menu:   NewMenuModel(env, cfg),
	}
	if env.Progress != nil && !env.Progress.HasSeenOnboarding() {
		m.screen = screenIntro
		m.intro = NewIntroModel(cfg.ScreenW, cfg.ScreenH)
	}
	return m
}

// WithLevel returns the session with level id already started, skipping
// the intro. Locked levels are refused.
func (m SessionModel) WithLevel(id int) (SessionModel, error) {
	if m.env.Progress != nil && !m.env.Progress.IsLevelUnlocked(id) {
		return m, fmt.Errorf("tui: level %d is locked", id)
	}
	if err := m.startGame(id); err != nil {
		return m, err
	}
	return m, nil
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.screen == screenGame && m.game != nil {
		return m.game.Init()
	}
	return nil
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenIntro:
		return m.updateIntro(msg)
	case screenGame:
		return m.updateGame(msg)
	case screenStats:
		return m.updateStats(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) updateIntro(msg tea.Msg) (tea.Model, tea.Cmd) {
	newIntro, cmd := m.intro.Update(msg)
	if intro, ok := newIntro.(IntroModel); ok {
		m.intro = intro
	}

	if m.intro.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.intro.Done() {
		if err := m.env.Progress.MarkOnboardingSeen(); err != nil {
			m.env.log().Warn("could not save onboarding flag", "error", err)
		}
		m.toMenu()
	}
	return m, cmd
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsStats() {
		stats := NewStatsModel(m.env, m.config.ScreenW, m.config.ScreenH)
		m.stats = &stats
		m.screen = screenStats
		return m, nil
	}

	if selected := m.menu.Selected(); selected != nil {
		if err := m.startGame(selected.ID); err != nil {
			m.env.log().Error("could not start level", "level", selected.ID, "error", err)
			m.toMenu()
			return m, nil
		}
		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.game.BackToMenu() {
		m.game = nil
		m.toMenu()
		return m, nil
	}

	return m, cmd
}

func (m SessionModel) updateStats(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.stats.Update(msg)
	if statsModel, ok := newModel.(StatsModel); ok {
		m.stats = &statsModel
	}

	if m.stats.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.stats.IsGoingBack() {
		m.stats = nil
		m.toMenu()
		return m, nil
	}
	return m, cmd
}

// startGame switches to the game screen on catalog level id.
func (m *SessionModel) startGame(id int) error {
	levels := m.env.Catalog.Levels()
	index := -1
	for i, l := range levels {
		if l.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("tui: unknown level %d", id)
	}

	game, err := NewGameModel(m.env, m.config, Playlist{Levels: levels, Index: index})
	if err != nil {
		return err
	}
	m.game = &game
	m.screen = screenGame
	return nil
}

// toMenu rebuilds the menu so it reflects fresh progress.
func (m *SessionModel) toMenu() {
	m.menu = NewMenuModel(m.env, m.config)
	m.screen = screenMenu
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenIntro:
		return m.intro.View()
	case screenGame:
		if m.game != nil {
			return m.game.View()
		}
	case screenStats:
		if m.stats != nil {
			return m.stats.View()
		}
	}
	return m.menu.View()
}

// RunSession runs a full local session. A positive startLevel skips
// straight into that level.
func RunSession(env *Env, cfg core.RuntimeConfig, startLevel int) error {
	model := NewSessionModel(env, cfg)
	if startLevel > 0 {
		var err error
		if model, err = model.WithLevel(startLevel); err != nil {
			return err
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
