package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/axiom-drop/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive level picker",
	Long: `Opens the level picker. Levels unlock one at a time as you complete them.

Controls:
  Arrows      - Navigate
  Enter       - Play the selected level
  Tab         - Stats and progress reset
  Q           - Quit`,
	Args: cobra.NoArgs,
	Run:  runMenu,
}

func runMenu(cmd *cobra.Command, args []string) {
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

	if err := tui.RunSession(env, runtimeConfig(cfg), 0); err != nil {
		fail("running menu: %v", err)
	}
}
