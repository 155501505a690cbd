package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Outcome values stored with a run.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Run is one finished attempt at a level.
type Run struct {
	ID        int64
	LevelID   int
	Player    string // empty for the local player
	Score     int
	Outcome   string
	Duration  time.Duration
	CreatedAt time.Time
}

// SaveRun records a finished attempt.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r Run) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO runs (level_id, player, score, outcome, duration_ms) VALUES (?, ?, ?, ?, ?)",
		r.LevelID, r.Player, r.Score, r.Outcome, r.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopRuns retrieves the best completed runs for a level.
// Results are ordered by score descending, faster runs first on ties.
func (s *Store) TopRuns(levelID, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryRuns(
		`SELECT id, level_id, player, score, outcome, duration_ms, created_at
		 FROM runs
		 WHERE level_id = ? AND outcome = ?
		 ORDER BY score DESC, duration_ms ASC
		 LIMIT ?`,
		levelID, OutcomeCompleted, limit,
	)
}

// PlayerRuns retrieves a player's most recent runs across all levels.
func (s *Store) PlayerRuns(player string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRuns(
		`SELECT id, level_id, player, score, outcome, duration_ms, created_at
		 FROM runs
		 WHERE player = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		player, limit,
	)
}

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMS int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.LevelID, &r.Player, &r.Score, &r.Outcome, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// BestScore returns the player's highest completed score on a level.
// Returns 0 if the level was never completed.
func (s *Store) BestScore(levelID int, player string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE level_id = ? AND player = ? AND outcome = ?",
		levelID, player, OutcomeCompleted,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearRuns deletes a player's run history.
func (s *Store) ClearRuns(player string) error {
	if _, err := s.db.Exec("DELETE FROM runs WHERE player = ?", player); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// LevelStats contains aggregated statistics for one level.
type LevelStats struct {
	LevelID    int
	Attempts   int
	Wins       int
	BestScore  int
	FastestWin time.Duration
	LastPlayed time.Time
}

// AllLevelStats retrieves a player's statistics for every level played.
func (s *Store) AllLevelStats(player string) (map[int]*LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT level_id,
		        COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(CASE WHEN outcome = ? THEN score END), 0),
		        COALESCE(MIN(CASE WHEN outcome = ? THEN duration_ms END), 0),
		        MAX(created_at)
		 FROM runs
		 WHERE player = ?
		 GROUP BY level_id`,
		OutcomeCompleted, OutcomeCompleted, OutcomeCompleted, player,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[int]*LevelStats)
	for rows.Next() {
		var ls LevelStats
		var fastestMS int64
		var lastPlayed any
		if err := rows.Scan(&ls.LevelID, &ls.Attempts, &ls.Wins, &ls.BestScore, &fastestMS, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ls.FastestWin = time.Duration(fastestMS) * time.Millisecond
		ls.LastPlayed = parseTime(lastPlayed)
		stats[ls.LevelID] = &ls
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
