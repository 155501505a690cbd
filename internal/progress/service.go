package progress

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Storage keys.
const (
	StorageKey    = "AxiomDrop_Progress"
	OnboardingKey = "AxiomDrop_HasSeenOnboarding"
)

// KV is the key/value store progress is persisted in.
type KV interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
	// Update replaces the value under key with fn's result in one atomic
	// step. ok reports whether a value was stored. Nothing is written when
	// fn fails.
	Update(key string, fn func(value []byte, ok bool) ([]byte, error)) error
}

// Service owns one player's progress and saves it after every change.
// Every change is applied to the stored record, so services sharing a
// namespace never overwrite each other's progress. It is safe for
// concurrent use.
type Service struct {
	mu        sync.Mutex
	kv        KV
	namespace string
	progress  Progress
}

// NewService loads the progress stored under namespace. A missing or
// unreadable record starts fresh; only a failing store is reported.
func NewService(kv KV, namespace string) (*Service, error) {
	s := &Service{kv: kv, namespace: namespace, progress: New()}

	data, ok, err := kv.Get(s.key(StorageKey))
	if err != nil {
		return nil, fmt.Errorf("progress: load: %w", err)
	}
	s.progress = s.decodeLocked(data, ok)
	return s, nil
}

func (s *Service) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + "/" + name
}

// Namespace returns the namespace the service persists under.
func (s *Service) Namespace() string {
	return s.namespace
}

// Progress returns a copy of the current record.
func (s *Service) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

// IsLevelUnlocked reports whether level id may be played.
func (s *Service) IsLevelUnlocked(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.IsLevelUnlocked(id)
}

// IsLevelCompleted reports whether level id has been completed.
func (s *Service) IsLevelCompleted(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.CompletedLevels.Has(id)
}

// CompleteLevel records a win, grants any milestones reached and saves.
// It returns the milestones granted by this completion.
func (s *Service) CompleteLevel(id int) ([]Milestone, error) {
	var granted []Milestone
	err := s.mutate(func(p *Progress) {
		p.CompleteLevel(id)
		granted = p.applyMilestones()
	})
	return granted, err
}

// AddFragments adds n fragments and saves.
func (s *Service) AddFragments(n int) error {
	return s.mutate(func(p *Progress) { p.Fragments += n })
}

// UnlockPattern unlocks a pattern by name and saves.
func (s *Service) UnlockPattern(name string) error {
	return s.mutate(func(p *Progress) { p.UnlockedPatterns.Add(name) })
}

// UnlockCoreState unlocks a core state by name and saves.
func (s *Service) UnlockCoreState(name string) error {
	return s.mutate(func(p *Progress) { p.UnlockedCoreStates.Add(name) })
}

// Reset discards all progress and saves the fresh record.
// The onboarding flag is kept.
func (s *Service) Reset() error {
	return s.mutate(func(p *Progress) { *p = New() })
}

// Reload replaces the cached record with the stored one.
func (s *Service) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok, err := s.kv.Get(s.key(StorageKey))
	if err != nil {
		return fmt.Errorf("progress: load: %w", err)
	}
	s.progress = s.decodeLocked(data, ok)
	return nil
}

// mutate applies fn to the stored record and caches the result. When the
// store cannot be reached fn is applied to the cached record only, so the
// session keeps its progress until the next successful save.
func (s *Service) mutate(fn func(p *Progress)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := false
	err := s.kv.Update(s.key(StorageKey), func(data []byte, ok bool) ([]byte, error) {
		p := s.decodeLocked(data, ok)
		fn(&p)
		s.progress, applied = p, true
		out, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("progress: encode: %w", err)
		}
		return out, nil
	})
	if !applied {
		fn(&s.progress)
	}
	if err != nil {
		return fmt.Errorf("progress: save: %w", err)
	}
	return nil
}

// decodeLocked returns the stored record, or a copy of the cached one when
// nothing readable is stored.
func (s *Service) decodeLocked(data []byte, ok bool) Progress {
	if ok {
		var p Progress
		if err := json.Unmarshal(data, &p); err == nil {
			p.normalize()
			return p
		}
	}
	return s.progress.Clone()
}

// HasSeenOnboarding reports whether the how-to-play intro was shown.
func (s *Service) HasSeenOnboarding() bool {
	data, ok, err := s.kv.Get(s.key(OnboardingKey))
	return err == nil && ok && string(data) == "true"
}

// MarkOnboardingSeen records that the intro was shown.
func (s *Service) MarkOnboardingSeen() error {
	if err := s.kv.Put(s.key(OnboardingKey), []byte("true")); err != nil {
		return fmt.Errorf("progress: save onboarding flag: %w", err)
	}
	return nil
}

// ResetOnboarding clears the intro flag so the intro is shown again.
func (s *Service) ResetOnboarding() error {
	if err := s.kv.Delete(s.key(OnboardingKey)); err != nil {
		return fmt.Errorf("progress: clear onboarding flag: %w", err)
	}
	return nil
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Update(key string, fn func([]byte, bool) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.data[key]
	if ok {
		old = append([]byte(nil), old...)
	}
	value, err := fn(old, ok)
	if err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
