package curriculum

import (
	"context"
	"sync"
)

// Store persists curricula and teacher overrides.
type Store interface {
	// Curriculum returns the class's curriculum, or ErrNotFound.
	Curriculum(ctx context.Context, classID string) (Curriculum, error)
	// SaveCurriculum upserts the class's curriculum (last write wins).
	SaveCurriculum(ctx context.Context, classID string, cur Curriculum) error
	// Overrides returns all overrides for a class as activityID → materialID.
	Overrides(ctx context.Context, classID string) (map[string]string, error)
	// UpsertOverride writes an override, keyed by (classID, activityID).
	UpsertOverride(ctx context.Context, ov Override) error
}

// overrideKey is the composite key for an override row. Kept as a struct
// rather than a concatenated string so id formatting can change without
// collision risk.
type overrideKey struct {
	classID    string
	activityID string
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	curricula map[string]Curriculum
	overrides map[overrideKey]string
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory curriculum store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		curricula: make(map[string]Curriculum),
		overrides: make(map[overrideKey]string),
	}
}

func (s *MemoryStore) Curriculum(_ context.Context, classID string) (Curriculum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur, ok := s.curricula[classID]
	if !ok {
		return Curriculum{}, ErrNotFound
	}
	cur.ClassFormat = append([]Slot(nil), cur.ClassFormat...)
	cur.StartedDays = append([]int(nil), cur.StartedDays...)
	return cur, nil
}

func (s *MemoryStore) SaveCurriculum(_ context.Context, classID string, cur Curriculum) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur.ClassFormat = append([]Slot(nil), cur.ClassFormat...)
	cur.StartedDays = append([]int(nil), cur.StartedDays...)
	s.curricula[classID] = cur
	return nil
}

func (s *MemoryStore) Overrides(_ context.Context, classID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string)
	for key, materialID := range s.overrides {
		if key.classID == classID {
			out[key.activityID] = materialID
		}
	}
	return out, nil
}

func (s *MemoryStore) UpsertOverride(_ context.Context, ov Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[overrideKey{classID: ov.ClassID, activityID: ov.ActivityID}] = ov.MaterialID
	return nil
}
