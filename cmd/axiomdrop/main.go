// axiomdrop is a falling-core arcade game for the terminal.
//
// Usage:
//
//	axiomdrop levels            - List the level catalog
//	axiomdrop play [level]      - Play a level (or continue where you left off)
//	axiomdrop menu              - Pick levels interactively
//	axiomdrop progress          - Show your progress
//	axiomdrop progress reset    - Start over
//	axiomdrop scores <level>    - Show the best runs on a level
//	axiomdrop serve             - Start the SSH and websocket servers
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: from config)
//	--db <path>         - Set database path (default: ~/.axiomdrop/progress.db)
//	--config <path>     - Load a config file
//	--log-level <lvl>   - debug, info, warn or error
//	--log-file <path>   - Write logs to a file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS      int
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "axiomdrop",
	Short: "Axiom Drop - steer a falling core into its target",
	Long: `Axiom Drop is a falling-core arcade game. Tilt the core as it descends,
collect nodes for points, avoid the red destabilizer zones and land in the
green target zone. Thirty levels across three tiers.

Available commands:
  levels    - Show the level catalog
  play      - Play a level directly
  menu      - Interactive level picker
  progress  - Show or reset your progress
  scores    - View the best runs on a level
  serve     - Start SSH and websocket servers for remote play

Examples:
  axiomdrop menu
  axiomdrop play 4
  axiomdrop play --level-file ./my-levels.yaml
  axiomdrop serve --ssh :2222 --ws :8080
  axiomdrop scores 12`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = use config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.axiomdrop/progress.db", "Path to progress database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	// Add subcommands
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}
