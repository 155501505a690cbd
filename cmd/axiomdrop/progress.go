package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

var (
	flagProgressPlayer string
	flagResetIntro     bool
	flagResetRuns      bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your progress",
	Long: `Shows completed levels, fragments and unlocks.

Use --player to inspect a player from the SSH or websocket servers.

Examples:
  axiomdrop progress
  axiomdrop progress --player ada
  axiomdrop progress reset`,
	Args: cobra.NoArgs,
	Run:  runProgress,
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset your progress",
	Long: `Clears completed levels, fragments and unlocks. Only level 1 stays open.

Examples:
  axiomdrop progress reset
  axiomdrop progress reset --intro   # also show the intro again
  axiomdrop progress reset --runs    # also clear run history`,
	Args: cobra.NoArgs,
	Run:  runProgressReset,
}

func init() {
	progressCmd.PersistentFlags().StringVar(&flagProgressPlayer, "player", "", "Player name (empty = local player)")
	progressResetCmd.Flags().BoolVar(&flagResetIntro, "intro", false, "Show the how-to-play intro again")
	progressResetCmd.Flags().BoolVar(&flagResetRuns, "runs", false, "Also clear run history")
	progressCmd.AddCommand(progressResetCmd)
}

func openProgress() (*storage.Store, *progress.Service) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening progress database: %v", err)
	}
	svc, err := progress.NewService(store, flagProgressPlayer)
	if err != nil {
		store.Close()
		fail("%v", err)
	}
	return store, svc
}

func runProgress(cmd *cobra.Command, args []string) {
	store, svc := openProgress()
	defer store.Close()

	p := svc.Progress()
	fmt.Printf("Completed  %d / %d\n", len(p.CompletedLevels), level.Count)
	fmt.Printf("Fragments  %d\n", p.Fragments)
	fmt.Println()

	for _, d := range level.Difficulties {
		var marks strings.Builder
		done := 0
		for _, id := range d.LevelIDs() {
			switch {
			case p.CompletedLevels.Has(id):
				marks.WriteString("✓")
				done++
			case p.IsLevelUnlocked(id):
				marks.WriteString("○")
			default:
				marks.WriteString("·")
			}
		}
		fmt.Printf("  %-7s %s  %d/%d\n", d.DisplayName(), marks.String(), done, len(d.LevelIDs()))
	}

	fmt.Println()
	fmt.Printf("Patterns     %s\n", listOrNone(p.UnlockedPatterns.Sorted()))
	fmt.Printf("Core states  %s\n", listOrNone(p.UnlockedCoreStates.Sorted()))
}

func runProgressReset(cmd *cobra.Command, args []string) {
	store, svc := openProgress()
	defer store.Close()

	if err := svc.Reset(); err != nil {
		fail("%v", err)
	}
	if flagResetIntro {
		if err := svc.ResetOnboarding(); err != nil {
			fail("%v", err)
		}
	}
	if flagResetRuns {
		if err := store.ClearRuns(flagProgressPlayer); err != nil {
			fail("%v", err)
		}
	}
	fmt.Println("Progress reset. Level 1 is waiting.")
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "none yet"
	}
	return strings.Join(names, ", ")
}
