// Package progress tracks which levels a player has completed and what the
// completions have unlocked, and persists that record through a key/value store.
package progress

import "github.com/vovakirdan/axiom-drop/internal/level"

// FragmentsPerLevel is awarded the first time a level is completed.
const FragmentsPerLevel = 10

// Progress is a player's persistent record.
type Progress struct {
	UnlockedLevels     Set[int]    `json:"unlockedLevels"`
	CompletedLevels    Set[int]    `json:"completedLevels"`
	Fragments          int         `json:"fragments"`
	UnlockedPatterns   Set[string] `json:"unlockedPatterns"`
	UnlockedCoreStates Set[string] `json:"unlockedCoreStates"`
}

// New returns a fresh record with only level 1 unlocked.
func New() Progress {
	return Progress{
		UnlockedLevels:     NewSet(1),
		CompletedLevels:    NewSet[int](),
		UnlockedPatterns:   NewSet[string](),
		UnlockedCoreStates: NewSet[string](),
	}
}

// IsLevelUnlocked reports whether id may be played. Level 1 is always open;
// any other level opens once its predecessor is completed.
func (p *Progress) IsLevelUnlocked(id int) bool {
	if id == 1 {
		return true
	}
	return p.CompletedLevels.Has(id - 1)
}

// CompleteLevel records a completion and unlocks the next level. Fragments
// are awarded only the first time; the return value reports whether this
// was that first time.
func (p *Progress) CompleteLevel(id int) bool {
	first := p.CompletedLevels.Add(id)
	if next := id + 1; next <= level.Count {
		p.UnlockedLevels.Add(next)
	}
	if first {
		p.Fragments += FragmentsPerLevel
	}
	return first
}

// Clone returns a deep copy.
func (p *Progress) Clone() Progress {
	return Progress{
		UnlockedLevels:     p.UnlockedLevels.Clone(),
		CompletedLevels:    p.CompletedLevels.Clone(),
		Fragments:          p.Fragments,
		UnlockedPatterns:   p.UnlockedPatterns.Clone(),
		UnlockedCoreStates: p.UnlockedCoreStates.Clone(),
	}
}

// normalize replaces sets missing from older or hand-edited records.
func (p *Progress) normalize() {
	if p.UnlockedLevels == nil {
		p.UnlockedLevels = NewSet(1)
	}
	if p.CompletedLevels == nil {
		p.CompletedLevels = NewSet[int]()
	}
	if p.UnlockedPatterns == nil {
		p.UnlockedPatterns = NewSet[string]()
	}
	if p.UnlockedCoreStates == nil {
		p.UnlockedCoreStates = NewSet[string]()
	}
}

// Milestone is an unlock earned at a completed-level count.
type Milestone struct {
	Completed int           `json:"completed"`
	Kind      MilestoneKind `json:"kind"`
	Name      string        `json:"name"`
}

// MilestoneKind tells patterns and core states apart.
type MilestoneKind string

const (
	KindPattern   MilestoneKind = "pattern"
	KindCoreState MilestoneKind = "coreState"
)

// Milestones lists every unlock in threshold order.
var Milestones = []Milestone{
	{5, KindPattern, "Pattern_Spiral"},
	{10, KindPattern, "Pattern_Orbit"},
	{15, KindCoreState, "State_Brilliant"},
	{20, KindPattern, "Pattern_Flux"},
	{25, KindCoreState, "State_Radiant"},
	{30, KindPattern, "Pattern_Master"},
}

// applyMilestones grants every milestone reached and not yet held, returning
// the newly granted ones.
func (p *Progress) applyMilestones() []Milestone {
	var granted []Milestone
	count := len(p.CompletedLevels)
	for _, m := range Milestones {
		if count < m.Completed {
			continue
		}
		set := p.UnlockedPatterns
		if m.Kind == KindCoreState {
			set = p.UnlockedCoreStates
		}
		if set.Add(m.Name) {
			granted = append(granted, m)
		}
	}
	return granted
}
