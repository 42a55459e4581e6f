package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"PulseBeacon/internal/model"
)

// MemoryStore keeps everything in process memory. Used when SQLite is not configured.
type MemoryStore struct {
	mu           sync.RWMutex
	beacons      map[uuid.UUID]model.Beacon
	order        []uuid.UUID
	readings     map[uuid.UUID][]model.Reading
	achievements map[string]model.AchievementRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		beacons:      make(map[uuid.UUID]model.Beacon),
		readings:     make(map[uuid.UUID][]model.Reading),
		achievements: make(map[string]model.AchievementRecord),
	}
}

func (s *MemoryStore) SaveBeacon(b *model.Beacon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.beacons[b.ID]; !ok {
		s.order = append(s.order, b.ID)
	}
	s.beacons[b.ID] = *b
	return nil
}

func (s *MemoryStore) Beacon(id uuid.UUID) (*model.Beacon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.beacons[id]
	if !ok {
		return nil, fmt.Errorf("beacon %s: %w", id, ErrNotFound)
	}
	return &b, nil
}

func (s *MemoryStore) Beacons() ([]model.Beacon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Beacon, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.beacons[id])
	}
	return out, nil
}

func (s *MemoryStore) DeleteBeacon(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.beacons[id]; !ok {
		return fmt.Errorf("beacon %s: %w", id, ErrNotFound)
	}
	delete(s.beacons, id)
	delete(s.readings, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) AppendReading(beaconID uuid.UUID, r model.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.beacons[beaconID]; !ok {
		return fmt.Errorf("beacon %s: %w", beaconID, ErrNotFound)
	}
	s.readings[beaconID] = append(s.readings[beaconID], r)
	return nil
}

func (s *MemoryStore) Readings(beaconID uuid.UUID) ([]model.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]model.Reading(nil), s.readings[beaconID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryStore) AchievementRecords() ([]model.AchievementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AchievementRecord, 0, len(s.achievements))
	for _, r := range s.achievements {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveAchievementRecords upserts records; stored unlocks are never reverted.
func (s *MemoryStore) SaveAchievementRecords(records []model.AchievementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if prev, ok := s.achievements[r.ID]; ok && prev.IsUnlocked {
			continue
		}
		s.achievements[r.ID] = r
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
