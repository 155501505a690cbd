package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/axiom-drop/internal/progress"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestKVRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := store.Put("k", []byte("one")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := store.Put("k", []byte("two")); err != nil {
		t.Fatalf("Put() overwrite failed: %v", err)
	}
	v, ok, err := store.Get("k")
	if err != nil || !ok || string(v) != "two" {
		t.Errorf("Get(k) = %q, %v, %v", v, ok, err)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Error("key still present after Delete()")
	}
	if err := store.Delete("k"); err != nil {
		t.Errorf("Delete() of a missing key failed: %v", err)
	}
}

func TestKVUpdate(t *testing.T) {
	store := openTestStore(t)

	err := store.Update("k", func(v []byte, ok bool) ([]byte, error) {
		if ok {
			t.Errorf("Update() on a missing key passed %q", v)
		}
		return []byte("one"), nil
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	err = store.Update("k", func(v []byte, ok bool) ([]byte, error) {
		if !ok || string(v) != "one" {
			t.Errorf("Update() passed %q, %v", v, ok)
		}
		return append(v, "+two"...), nil
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	boom := errors.New("boom")
	err = store.Update("k", func([]byte, bool) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Update() = %v, expected the callback error", err)
	}
	if v, _, _ := store.Get("k"); string(v) != "one+two" {
		t.Errorf("Get(k) = %q, expected one+two", v)
	}
}

func TestProgressServicesShareRecord(t *testing.T) {
	store := openTestStore(t)

	// b is loaded before a makes any progress.
	b, err := progress.NewService(store, "alice")
	if err != nil {
		t.Fatal(err)
	}
	a, err := progress.NewService(store, "alice")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []int{1, 2} {
		if _, err := a.CompleteLevel(id); err != nil {
			t.Fatalf("CompleteLevel(%d) failed: %v", id, err)
		}
	}
	if _, err := b.CompleteLevel(1); err != nil {
		t.Fatal(err)
	}

	reloaded, err := progress.NewService(store, "alice")
	if err != nil {
		t.Fatal(err)
	}
	p := reloaded.Progress()
	if !p.CompletedLevels.Has(2) || p.Fragments != 20 {
		t.Errorf("stored progress = completed %v, fragments %d; expected [1 2], 20",
			p.CompletedLevels.Sorted(), p.Fragments)
	}
}

func TestProgressSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "progress.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := progress.NewService(store, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteLevel(1); err != nil {
		t.Fatalf("CompleteLevel() failed: %v", err)
	}
	if err := svc.MarkOnboardingSeen(); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	svc, err = progress.NewService(store, "")
	if err != nil {
		t.Fatal(err)
	}
	if !svc.IsLevelUnlocked(2) || svc.Progress().Fragments != 10 || !svc.HasSeenOnboarding() {
		t.Errorf("progress not persisted: %+v", svc.Progress())
	}
}

func TestSaveAndTopRuns(t *testing.T) {
	store := openTestStore(t)

	runs := []Run{
		{LevelID: 1, Score: 30, Outcome: OutcomeCompleted, Duration: 9 * time.Second},
		{LevelID: 1, Score: 50, Outcome: OutcomeCompleted, Duration: 8 * time.Second},
		{LevelID: 1, Score: 50, Outcome: OutcomeCompleted, Duration: 7 * time.Second},
		{LevelID: 1, Score: 90, Outcome: OutcomeFailed, Duration: 3 * time.Second},
		{LevelID: 2, Score: 70, Outcome: OutcomeCompleted, Duration: 5 * time.Second},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	top, err := store.TopRuns(1, 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 completed runs, got %d", len(top))
	}
	if top[0].Score != 50 || top[0].Duration != 7*time.Second {
		t.Errorf("tie should favor the faster run, got %+v", top[0])
	}
	if top[2].Score != 30 {
		t.Errorf("lowest score should be last, got %d", top[2].Score)
	}

	limited, _ := store.TopRuns(1, 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied: %d runs", len(limited))
	}
}

func TestBestScore(t *testing.T) {
	store := openTestStore(t)

	best, err := store.BestScore(4, "")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("expected 0 for an unplayed level, got %d", best)
	}

	store.SaveRun(Run{LevelID: 4, Score: 40, Outcome: OutcomeCompleted})                //nolint:errcheck
	store.SaveRun(Run{LevelID: 4, Score: 80, Outcome: OutcomeFailed})                   //nolint:errcheck
	store.SaveRun(Run{LevelID: 4, Score: 60, Outcome: OutcomeCompleted, Player: "bob"}) //nolint:errcheck

	if best, _ := store.BestScore(4, ""); best != 40 {
		t.Errorf("BestScore(local) = %d, expected 40", best)
	}
	if best, _ := store.BestScore(4, "bob"); best != 60 {
		t.Errorf("BestScore(bob) = %d, expected 60", best)
	}
}

func TestLevelStatsAndClear(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(Run{LevelID: 3, Score: 10, Outcome: OutcomeFailed, Duration: 2 * time.Second})    //nolint:errcheck
	store.SaveRun(Run{LevelID: 3, Score: 40, Outcome: OutcomeCompleted, Duration: 6 * time.Second}) //nolint:errcheck
	store.SaveRun(Run{LevelID: 3, Score: 30, Outcome: OutcomeCompleted, Duration: 5 * time.Second}) //nolint:errcheck
	store.SaveRun(Run{LevelID: 5, Score: 0, Outcome: OutcomeFailed, Duration: time.Second})         //nolint:errcheck
	store.SaveRun(Run{LevelID: 3, Score: 99, Outcome: OutcomeCompleted, Player: "other"})           //nolint:errcheck

	stats, err := store.AllLevelStats("")
	if err != nil {
		t.Fatalf("AllLevelStats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 levels, got %d", len(stats))
	}

	s3 := stats[3]
	if s3.Attempts != 3 || s3.Wins != 2 || s3.BestScore != 40 || s3.FastestWin != 5*time.Second {
		t.Errorf("level 3 stats = %+v", s3)
	}
	if s3.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}
	s5 := stats[5]
	if s5.Wins != 0 || s5.BestScore != 0 || s5.FastestWin != 0 {
		t.Errorf("level 5 stats = %+v", s5)
	}

	recent, err := store.PlayerRuns("", 2)
	if err != nil {
		t.Fatalf("PlayerRuns() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].LevelID != 5 {
		t.Errorf("PlayerRuns() = %+v", recent)
	}

	if err := store.ClearRuns(""); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}
	if stats, _ := store.AllLevelStats(""); len(stats) != 0 {
		t.Errorf("stats remain after ClearRuns(): %d", len(stats))
	}
	if other, _ := store.AllLevelStats("other"); len(other) != 1 {
		t.Error("ClearRuns() should only affect one player")
	}
}
