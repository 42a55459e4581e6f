package store

import (
	"errors"

	"github.com/google/uuid"

	"PulseBeacon/internal/model"
)

// ErrNotFound is returned when a beacon does not exist.
var ErrNotFound = errors.New("not found")

// Store persists beacons, their append-only reading history and achievement state.
type Store interface {
	SaveBeacon(b *model.Beacon) error
	Beacon(id uuid.UUID) (*model.Beacon, error)
	Beacons() ([]model.Beacon, error)
	// DeleteBeacon removes the beacon and its readings.
	DeleteBeacon(id uuid.UUID) error

	AppendReading(beaconID uuid.UUID, r model.Reading) error
	// Readings returns the beacon's readings ordered by timestamp, oldest first.
	Readings(beaconID uuid.UUID) ([]model.Reading, error)

	AchievementRecords() ([]model.AchievementRecord, error)
	// SaveAchievementRecords upserts records. A stored unlock stays unlocked
	// with its original timestamp even if a stale caller sends it locked.
	SaveAchievementRecords(records []model.AchievementRecord) error

	Close() error
}
