package tui

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/axiom-drop/internal/config"
	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

// Env carries the services shared by every screen of one player's session.
type Env struct {
	Config   config.Config
	Catalog  *level.Catalog
	Progress *progress.Service
	Store    *storage.Store // nil when running without a database
	Logger   *log.Logger
	Player   string // empty for the local player
}

func (e *Env) log() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

// bestScore returns the player's best completed score on a level, or 0.
func (e *Env) bestScore(levelID int) int {
	if e.Store == nil {
		return 0
	}
	best, err := e.Store.BestScore(levelID, e.Player)
	if err != nil {
		e.log().Warn("could not load best score", "level", levelID, "error", err)
		return 0
	}
	return best
}
