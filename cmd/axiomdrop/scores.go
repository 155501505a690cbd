package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <level>",
	Short: "Show the best runs on a level",
	Long: `Display the best completed runs for the specified level, across all
players. Ties go to the faster run.

Examples:
  axiomdrop scores 1
  axiomdrop scores 12 --limit 20`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show")
}

func runScores(cmd *cobra.Command, args []string) {
	levelID, err := strconv.Atoi(args[0])
	if err != nil {
		fail("level must be a number, got %q", args[0])
	}
	if _, ok := level.DifficultyOf(levelID); !ok {
		fail("unknown level %d (the catalog has levels 1-%d)", levelID, level.Count)
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening progress database: %v", err)
	}
	defer store.Close()

	runs, err := store.TopRuns(levelID, flagScoresLimit)
	if err != nil {
		fail("retrieving runs: %v", err)
	}

	fmt.Printf("Best Runs - Level %d\n", levelID)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No completed runs yet.")
		fmt.Println()
		fmt.Printf("Play 'axiomdrop play %d' to set the first one!\n", levelID)
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-7s  %-8s  %-12s  %s\n", "Rank", "Score", "Time", "Player", "Date")
	fmt.Printf("  %-4s  %-7s  %-8s  %-12s  %s\n", "----", "-----", "----", "------", "----")

	for i, r := range runs {
		player := r.Player
		if player == "" {
			player = "(local)"
		}
		fmt.Printf("  %-4d  %-7d  %-8s  %-12s  %s\n",
			i+1, r.Score, fmt.Sprintf("%.1fs", r.Duration.Seconds()), player, r.CreatedAt.Format("2006-01-02 15:04"))
	}
}
