package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/axiom-drop/internal/level"
)

var (
	flagLevelsDifficulty string
	flagLevelsJSON       bool
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the level catalog",
	Long: `Shows every level with its tier, descent speed and node count.

Examples:
  axiomdrop levels
  axiomdrop levels --difficulty hard
  axiomdrop levels --json`,
	Args: cobra.NoArgs,
	Run:  runLevels,
}

func init() {
	levelsCmd.Flags().StringVar(&flagLevelsDifficulty, "difficulty", "", "Only list one tier: easy, medium, hard")
	levelsCmd.Flags().BoolVar(&flagLevelsJSON, "json", false, "Print the catalog as JSON")
}

func runLevels(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	catalog := level.NewCatalog(cfg.Viewport)

	levels := catalog.Levels()
	if flagLevelsDifficulty != "" {
		d := level.Difficulty(flagLevelsDifficulty)
		if !d.Valid() {
			fail("unknown difficulty %q", flagLevelsDifficulty)
		}
		levels = catalog.ByDifficulty(d)
	}

	if flagLevelsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(levels); err != nil {
			fail("%v", err)
		}
		return
	}

	fmt.Printf("Levels for a %vx%v play field:\n\n", catalog.Viewport().W, catalog.Viewport().H)
	fmt.Printf("  %-3s  %-7s  %-10s  %6s  %5s  %s\n", "ID", "Tier", "Name", "Speed", "Nodes", "Description")
	fmt.Printf("  %-3s  %-7s  %-10s  %6s  %5s  %s\n", "--", "----", "----", "-----", "-----", "-----------")
	for _, l := range levels {
		fmt.Printf("  %-3d  %-7s  %-10s  %6.0f  %5d  %s\n",
			l.ID, l.Difficulty.DisplayName(), l.Name, l.DescentSpeed, len(l.NodePositions), l.Description)
	}

	fmt.Println()
	fmt.Println("Run 'axiomdrop play <id>' to play a level.")
}
