package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/platform/tui"
)

var flagLevelFile string

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play a level",
	Long: `Start playing a level. Without a level number, play continues at the
first unlocked level you have not completed.

Controls:
  Left/A/H    - Tilt left
  Right/D/L   - Tilt right
  Space/S     - Stabilizer (slows the descent, 3 per attempt)
  P           - Pause
  R           - Retry
  N           - Next level (after a win)
  B/Esc       - Back to the menu
  Q/Ctrl+C    - Quit

With --level-file the levels are read from a YAML file and played in
practice mode: results are not recorded.

Examples:
  axiomdrop play
  axiomdrop play 7
  axiomdrop play --level-file ./levels.yaml
  axiomdrop play 2 --level-file ./levels.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLevelFile, "level-file", "", "Play levels from a YAML file")
}

func runPlay(cmd *cobra.Command, args []string) {
	levelID := 0
	if len(args) == 1 {
		id, err := strconv.Atoi(args[0])
		if err != nil || id < 1 {
			fail("level must be a positive number, got %q", args[0])
		}
		levelID = id
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	logger, closer, err := newLogger("axiomdrop", true)
	if err != nil {
		fail("%v", err)
	}
	defer closer.Close()

	env, cleanup, err := localEnv(cfg, logger)
	if err != nil {
		fail("%v", err)
	}
	defer cleanup()

	rt := runtimeConfig(cfg)

	if flagLevelFile != "" {
		pl, plErr := filePlaylist(flagLevelFile, levelID)
		if plErr != nil {
			fail("%v", plErr)
		}
		if err := tui.RunGame(env, rt, pl); err != nil {
			fail("running game: %v", err)
		}
		return
	}

	if levelID == 0 {
		levelID = nextLevel(env)
	} else if _, ok := env.Catalog.ByID(levelID); !ok {
		fail("unknown level %d (the catalog has levels 1-%d)", levelID, level.Count)
	}

	if err := tui.RunSession(env, rt, levelID); err != nil {
		fail("%v", err)
	}
}

// filePlaylist loads a level file and starts at levelID, or at the first
// level when levelID is 0.
func filePlaylist(path string, levelID int) (tui.Playlist, error) {
	levels, err := level.LoadFile(path)
	if err != nil {
		return tui.Playlist{}, err
	}
	pl := tui.Playlist{Levels: levels, Practice: true}
	if levelID == 0 {
		return pl, nil
	}
	for i, l := range levels {
		if l.ID == levelID {
			pl.Index = i
			return pl, nil
		}
	}
	return tui.Playlist{}, fmt.Errorf("level %d is not in %s", levelID, path)
}

// nextLevel returns the first unlocked level not yet completed, or the last
// level once everything is done.
func nextLevel(env *tui.Env) int {
	for _, l := range env.Catalog.Levels() {
		if env.Progress.IsLevelUnlocked(l.ID) && !env.Progress.IsLevelCompleted(l.ID) {
			return l.ID
		}
	}
	return level.Count
}
