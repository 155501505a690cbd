package progress

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestIsLevelUnlocked(t *testing.T) {
	p := New()
	if !p.IsLevelUnlocked(1) {
		t.Error("level 1 should always be unlocked")
	}
	if p.IsLevelUnlocked(2) {
		t.Error("level 2 should be locked on a fresh record")
	}

	p.CompleteLevel(1)
	p.CompleteLevel(7)
	tests := []struct {
		id   int
		want bool
	}{
		{1, true},
		{2, true},
		{3, false},
		{8, true},
		{7, false},
	}
	for _, tc := range tests {
		if got := p.IsLevelUnlocked(tc.id); got != tc.want {
			t.Errorf("IsLevelUnlocked(%d) = %v, expected %v", tc.id, got, tc.want)
		}
	}

	// Level 1 stays open even on a record that somehow lost it.
	p.UnlockedLevels = NewSet[int]()
	if !p.IsLevelUnlocked(1) {
		t.Error("level 1 should be unlocked regardless of the record")
	}
}

func TestCompleteLevelAwardsFragmentsOnce(t *testing.T) {
	p := New()

	if !p.CompleteLevel(3) {
		t.Error("first completion should report true")
	}
	if p.Fragments != 10 {
		t.Fatalf("fragments = %d, expected 10", p.Fragments)
	}

	if p.CompleteLevel(3) {
		t.Error("repeat completion should report false")
	}
	if p.Fragments != 10 {
		t.Errorf("fragments = %d after repeat, expected 10", p.Fragments)
	}
	if !p.UnlockedLevels.Has(4) {
		t.Error("completing 3 should unlock 4")
	}
}

func TestCompleteLastLevelUnlocksNothingBeyond(t *testing.T) {
	p := New()
	p.CompleteLevel(30)
	if p.UnlockedLevels.Has(31) {
		t.Error("level 31 does not exist and must not be unlocked")
	}
}

func TestMilestones(t *testing.T) {
	p := New()
	var granted []Milestone
	for id := 1; id <= 30; id++ {
		p.CompleteLevel(id)
		granted = append(granted, p.applyMilestones()...)
	}

	if len(granted) != len(Milestones) {
		t.Fatalf("granted %d milestones, expected %d", len(granted), len(Milestones))
	}
	for i, m := range granted {
		if m != Milestones[i] {
			t.Errorf("milestone %d = %+v, expected %+v", i, m, Milestones[i])
		}
	}
	for _, name := range []string{"Pattern_Spiral", "Pattern_Orbit", "Pattern_Flux", "Pattern_Master"} {
		if !p.UnlockedPatterns.Has(name) {
			t.Errorf("pattern %s not unlocked", name)
		}
	}
	for _, name := range []string{"State_Brilliant", "State_Radiant"} {
		if !p.UnlockedCoreStates.Has(name) {
			t.Errorf("core state %s not unlocked", name)
		}
	}
	if more := p.applyMilestones(); len(more) != 0 {
		t.Errorf("milestones granted twice: %+v", more)
	}
}

func TestProgressJSON(t *testing.T) {
	p := New()
	p.CompleteLevel(2)
	p.CompleteLevel(1)
	p.UnlockedPatterns.Add("Pattern_Spiral")

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	want := `{"unlockedLevels":[1,2,3],"completedLevels":[1,2],"fragments":20,"unlockedPatterns":["Pattern_Spiral"],"unlockedCoreStates":[]}`
	if string(data) != want {
		t.Errorf("json = %s\nexpected %s", data, want)
	}

	var back Progress
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if back.Fragments != 20 || !back.CompletedLevels.Has(2) || !back.UnlockedLevels.Has(3) {
		t.Errorf("decoded = %+v", back)
	}
}

func TestServicePersists(t *testing.T) {
	kv := NewMemoryKV()
	svc, err := NewService(kv, "")
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}

	for id := 1; id <= 4; id++ {
		if _, err := svc.CompleteLevel(id); err != nil {
			t.Fatalf("CompleteLevel(%d) failed: %v", id, err)
		}
	}
	granted, err := svc.CompleteLevel(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(granted) != 1 || granted[0].Name != "Pattern_Spiral" {
		t.Errorf("fifth completion granted %+v", granted)
	}
	if _, ok, _ := kv.Get(StorageKey); !ok {
		t.Fatalf("progress not stored under %s", StorageKey)
	}

	reloaded, err := NewService(kv, "")
	if err != nil {
		t.Fatal(err)
	}
	p := reloaded.Progress()
	if p.Fragments != 50 || len(p.CompletedLevels) != 5 || !reloaded.IsLevelUnlocked(6) {
		t.Errorf("reloaded progress = %+v", p)
	}
	if !reloaded.IsLevelCompleted(5) || reloaded.IsLevelCompleted(6) {
		t.Error("unexpected IsLevelCompleted()")
	}
}

func TestServiceExtras(t *testing.T) {
	svc, err := NewService(NewMemoryKV(), "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.AddFragments(7); err != nil {
		t.Fatal(err)
	}
	if err := svc.UnlockPattern("Pattern_Custom"); err != nil {
		t.Fatal(err)
	}
	if err := svc.UnlockCoreState("State_Custom"); err != nil {
		t.Fatal(err)
	}

	p := svc.Progress()
	if p.Fragments != 7 || !p.UnlockedPatterns.Has("Pattern_Custom") || !p.UnlockedCoreStates.Has("State_Custom") {
		t.Errorf("progress = %+v", p)
	}

	// Progress() hands out a copy.
	p.CompletedLevels.Add(9)
	if svc.IsLevelCompleted(9) {
		t.Error("mutating the returned copy leaked into the service")
	}
}

func TestServiceReset(t *testing.T) {
	kv := NewMemoryKV()
	svc, _ := NewService(kv, "")
	svc.CompleteLevel(1) //nolint:errcheck
	if err := svc.MarkOnboardingSeen(); err != nil {
		t.Fatal(err)
	}

	if err := svc.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	p := svc.Progress()
	if p.Fragments != 0 || len(p.CompletedLevels) != 0 || !p.UnlockedLevels.Has(1) {
		t.Errorf("progress after reset = %+v", p)
	}
	if !svc.HasSeenOnboarding() {
		t.Error("Reset() should keep the onboarding flag")
	}

	reloaded, _ := NewService(kv, "")
	if reloaded.Progress().Fragments != 0 {
		t.Error("reset was not persisted")
	}
}

func TestServiceNamespaces(t *testing.T) {
	kv := NewMemoryKV()
	alice, _ := NewService(kv, "alice")
	bob, _ := NewService(kv, "bob")

	alice.CompleteLevel(1)     //nolint:errcheck
	alice.MarkOnboardingSeen() //nolint:errcheck

	if bob.IsLevelUnlocked(2) || bob.HasSeenOnboarding() {
		t.Error("namespaces should not share progress")
	}
	if _, ok, _ := kv.Get("alice/" + StorageKey); !ok {
		t.Error("expected namespaced key")
	}
	if alice.Namespace() != "alice" {
		t.Errorf("Namespace() = %q", alice.Namespace())
	}
}

func TestServicesShareNamespace(t *testing.T) {
	kv := NewMemoryKV()

	// stale is loaded before fresh makes any progress.
	stale, _ := NewService(kv, "alice")
	fresh, _ := NewService(kv, "alice")
	for _, id := range []int{1, 2} {
		if _, err := fresh.CompleteLevel(id); err != nil {
			t.Fatalf("CompleteLevel(%d) failed: %v", id, err)
		}
	}
	if _, err := stale.CompleteLevel(1); err != nil {
		t.Fatal(err)
	}
	if err := stale.AddFragments(5); err != nil {
		t.Fatal(err)
	}

	reloaded, _ := NewService(kv, "alice")
	p := reloaded.Progress()
	if !p.CompletedLevels.Has(1) || !p.CompletedLevels.Has(2) || p.Fragments != 25 {
		t.Errorf("stored progress = completed %v, fragments %d; expected [1 2], 25",
			p.CompletedLevels.Sorted(), p.Fragments)
	}
	// The writer picks up the stored record along the way.
	if !stale.IsLevelUnlocked(3) {
		t.Error("stale service should see level 3 unlocked after its own write")
	}
}

func TestServiceReload(t *testing.T) {
	kv := NewMemoryKV()
	reader, _ := NewService(kv, "")
	writer, _ := NewService(kv, "")

	writer.CompleteLevel(1) //nolint:errcheck
	if reader.IsLevelUnlocked(2) {
		t.Fatal("reader should hold its loaded copy until reloaded")
	}
	if err := reader.Reload(); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	if !reader.IsLevelUnlocked(2) {
		t.Error("Reload() did not pick up the stored record")
	}
}

func TestServiceResetDiscardsOtherWrites(t *testing.T) {
	kv := NewMemoryKV()
	a, _ := NewService(kv, "")
	b, _ := NewService(kv, "")

	a.CompleteLevel(1) //nolint:errcheck
	if err := b.Reset(); err != nil {
		t.Fatal(err)
	}
	reloaded, _ := NewService(kv, "")
	if reloaded.IsLevelCompleted(1) {
		t.Error("Reset() should clear completions saved by another service")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(NewMemoryKV())

	a1, err := reg.Service("alice")
	if err != nil {
		t.Fatalf("Service() failed: %v", err)
	}
	a2, _ := reg.Service("alice")
	bob, _ := reg.Service("bob")
	if a1 != a2 {
		t.Error("the same namespace should share one service")
	}
	if a1 == bob {
		t.Error("namespaces should get separate services")
	}
	if reg.Count() != 2 {
		t.Errorf("Count() = %d, expected 2", reg.Count())
	}

	a1.CompleteLevel(1) //nolint:errcheck
	if !a2.IsLevelUnlocked(2) {
		t.Error("a completion should be visible through every handle")
	}
}

func TestRegistryDoesNotCacheFailures(t *testing.T) {
	boom := errors.New("offline")
	reg := NewRegistry(failingKV{boom})
	if _, err := reg.Service("alice"); !errors.Is(err, boom) {
		t.Errorf("Service() = %v, expected wrapped store error", err)
	}
	if reg.Count() != 0 {
		t.Error("a failed load should not be cached")
	}
}

func TestMemoryKVUpdate(t *testing.T) {
	kv := NewMemoryKV()
	boom := errors.New("boom")

	kv.Put("k", []byte("v1")) //nolint:errcheck
	if err := kv.Update("k", func([]byte, bool) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("Update() = %v, expected callback error", err)
	}
	if v, _, _ := kv.Get("k"); string(v) != "v1" {
		t.Errorf("failed Update() changed the value to %q", v)
	}

	err := kv.Update("new", func(v []byte, ok bool) ([]byte, error) {
		if ok {
			t.Error("missing key reported as present")
		}
		return []byte("x"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := kv.Get("new"); !ok || string(v) != "x" {
		t.Errorf("Get(new) = %q, %v", v, ok)
	}
}

func TestOnboardingFlag(t *testing.T) {
	svc, _ := NewService(NewMemoryKV(), "")
	if svc.HasSeenOnboarding() {
		t.Error("fresh store should not have seen onboarding")
	}
	if err := svc.MarkOnboardingSeen(); err != nil {
		t.Fatal(err)
	}
	if !svc.HasSeenOnboarding() {
		t.Error("flag not set")
	}
	if err := svc.ResetOnboarding(); err != nil {
		t.Fatal(err)
	}
	if svc.HasSeenOnboarding() {
		t.Error("flag not cleared")
	}
}

func TestServiceIgnoresCorruptRecord(t *testing.T) {
	kv := NewMemoryKV()
	kv.Put(StorageKey, []byte("{not json")) //nolint:errcheck

	svc, err := NewService(kv, "")
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	if !svc.IsLevelUnlocked(1) || svc.Progress().Fragments != 0 {
		t.Error("corrupt record should start fresh")
	}
}

func TestServiceFillsMissingSets(t *testing.T) {
	kv := NewMemoryKV()
	kv.Put(StorageKey, []byte(`{"completedLevels":[1],"fragments":10}`)) //nolint:errcheck

	svc, err := NewService(kv, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteLevel(2); err != nil {
		t.Fatalf("CompleteLevel() on a partial record failed: %v", err)
	}
	if !svc.IsLevelUnlocked(3) || svc.Progress().Fragments != 20 {
		t.Errorf("progress = %+v", svc.Progress())
	}
}

type failingKV struct{ err error }

func (f failingKV) Get(string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingKV) Put(string, []byte) error         { return f.err }
func (f failingKV) Delete(string) error              { return f.err }
func (f failingKV) Update(string, func([]byte, bool) ([]byte, error)) error {
	return f.err
}

func TestServiceReportsStoreErrors(t *testing.T) {
	boom := errors.New("disk full")
	if _, err := NewService(failingKV{boom}, ""); !errors.Is(err, boom) {
		t.Errorf("NewService() = %v, expected wrapped store error", err)
	}

	kv := NewMemoryKV()
	svc, _ := NewService(kv, "")
	svc.kv = failingKV{boom}
	if _, err := svc.CompleteLevel(1); !errors.Is(err, boom) {
		t.Errorf("CompleteLevel() = %v, expected wrapped store error", err)
	}
	// The in-memory record still advances.
	if !svc.IsLevelCompleted(1) {
		t.Error("completion should be kept in memory when saving fails")
	}
}
