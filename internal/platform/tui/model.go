package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/axiom-drop/internal/core"
	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/sim"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

// Playlist is the ordered set of levels a game screen can move through.
type Playlist struct {
	Levels   []level.Level
	Index    int  // level to start with
	Practice bool // results are not recorded
}

// GameModel drives one simulation from key presses and ticks.
type GameModel struct {
	env       *Env
	sim       *sim.Simulation
	screen    *core.Screen
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	playlist  Playlist

	attempt     int // bumped on every start so stale timers are ignored
	bestScore   int
	outcome     *sim.Outcome
	showOutcome bool
	milestones  []progress.Milestone

	standalone bool // back quits instead of returning to a menu
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a game screen and starts the playlist's current level.
func NewGameModel(env *Env, cfg core.RuntimeConfig, pl Playlist) (GameModel, error) {
	if pl.Index < 0 || pl.Index >= len(pl.Levels) {
		return GameModel{}, fmt.Errorf("tui: level index %d out of range", pl.Index)
	}
	m := GameModel{
		env:       env,
		sim:       sim.New(env.Config.Simulation, cfg.Viewport, nil),
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:    cfg,
		keyMapper: NewKeyMapper(),
		playlist:  pl,
	}
	if err := m.start(); err != nil {
		return GameModel{}, err
	}
	return m, nil
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()

	case pulseEndMsg:
		if msg.attempt == m.attempt {
			m.sim.EndPulse()
		}
		return m, nil

	case outcomeMsg:
		if msg.attempt == m.attempt {
			m.showOutcome = true
		}
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, quit := m.keyMapper.MapKey(msg)
	if quit {
		m.quitting = true
		return m, tea.Quit
	}

	state := m.sim.State()
	switch action {
	case core.ActionBack:
		if state == sim.StatePlaying {
			m.sim.Pause()
			return m, nil
		}
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil

	case core.ActionRestart:
		if state == sim.StatePaused || m.showOutcome {
			return m.restart()
		}
		return m, nil

	case core.ActionNext:
		if m.showOutcome && state == sim.StateCompleted && m.hasNext() {
			m.playlist.Index++
			return m.restart()
		}
		return m, nil
	}

	m.sim.Apply(action)
	return m, nil
}

// handleTick advances the simulation by the wall-clock time since the last tick.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.config.TickRate)}

	res := m.sim.Step()
	if res.Pulse != nil {
		cmds = append(cmds, pulseCmd(res.Pulse.RevertAfter, m.attempt))
	}
	if res.Outcome != nil {
		m.outcome = res.Outcome
		m.record(*res.Outcome)
		cmds = append(cmds, outcomeCmd(m.env.Config.Host.OutcomeDelay, m.attempt))
	}
	return m, tea.Batch(cmds...)
}

// record saves a finished attempt and, on a win, the player's progress.
func (m *GameModel) record(o sim.Outcome) {
	lvl := m.sim.Level()
	logger := m.env.log().With("level", lvl.ID, "player", m.env.Player)
	logger.Info("level finished", "state", o.State, "cause", o.Cause, "score", o.Score)

	if m.playlist.Practice {
		return
	}

	if m.env.Store != nil {
		outcome := storage.OutcomeFailed
		if o.State == sim.StateCompleted {
			outcome = storage.OutcomeCompleted
		}
		run := storage.Run{
			LevelID:  lvl.ID,
			Player:   m.env.Player,
			Score:    o.Score,
			Outcome:  outcome,
			Duration: m.sim.PlayTime(),
		}
		if _, err := m.env.Store.SaveRun(run); err != nil {
			logger.Warn("could not save run", "error", err)
		}
	}

	if o.State != sim.StateCompleted {
		return
	}
	if o.Score > m.bestScore {
		m.bestScore = o.Score
	}
	if m.env.Progress == nil {
		return
	}
	granted, err := m.env.Progress.CompleteLevel(lvl.ID)
	if err != nil {
		logger.Warn("could not save progress", "error", err)
	}
	m.milestones = granted
	for _, g := range granted {
		logger.Info("milestone unlocked", "kind", g.Kind, "name", g.Name)
	}
}

// start begins the playlist's current level.
func (m *GameModel) start() error {
	lvl := m.playlist.Levels[m.playlist.Index]
	if err := m.sim.Start(lvl); err != nil {
		return fmt.Errorf("tui: start level %d: %w", lvl.ID, err)
	}
	m.attempt++
	m.outcome = nil
	m.showOutcome = false
	m.milestones = nil
	m.bestScore = 0
	if !m.playlist.Practice {
		m.bestScore = m.env.bestScore(lvl.ID)
	}
	return nil
}

func (m GameModel) restart() (tea.Model, tea.Cmd) {
	if err := m.start(); err != nil {
		m.env.log().Error("could not restart level", "error", err)
		m.backToMenu = true
	}
	return m, nil
}

func (m GameModel) hasNext() bool {
	return m.playlist.Index+1 < len(m.playlist.Levels)
}

// View renders the play field and any overlay.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	drawPlayfield(m.screen, m.sim, m.bestScore)

	switch {
	case m.sim.State() == sim.StatePaused:
		drawOverlay(m.screen, core.ColorBlue, "PAUSED", "", "p resume  r restart  b menu")
	case m.showOutcome && m.outcome != nil:
		m.drawOutcome()
	}
	return RenderScreen(m.screen)
}

func (m GameModel) drawOutcome() {
	o := m.outcome
	if o.State == sim.StateCompleted {
		lines := []string{"LEVEL COMPLETE", "", fmt.Sprintf("Score %d", o.Score)}
		if len(m.milestones) > 0 {
			lines = append(lines, "")
			for _, g := range m.milestones {
				lines = append(lines, "Unlocked "+g.Name)
			}
		}
		help := "r retry  b menu"
		if m.hasNext() {
			help = "n next  " + help
		}
		lines = append(lines, "", help)
		drawOverlay(m.screen, core.ColorGreen, lines...)
		return
	}

	title := "CORE LOST"
	if o.Cause == sim.CauseDestabilizer {
		title = "DESTABILIZED"
	}
	drawOverlay(m.screen, core.ColorRed, title, "", fmt.Sprintf("Score %d", o.Score), "", "r retry  b menu")
}

// Level returns the level being played.
func (m GameModel) Level() level.Level {
	return m.playlist.Levels[m.playlist.Index]
}

// Simulation exposes the running simulation.
func (m GameModel) Simulation() *sim.Simulation {
	return m.sim
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// RunGame plays a playlist on its own, without the level menu.
func RunGame(env *Env, cfg core.RuntimeConfig, pl Playlist) error {
	model, err := NewGameModel(env, cfg, pl)
	if err != nil {
		return err
	}
	model.standalone = true

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
