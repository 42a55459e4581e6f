package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrValidation marks input rejected before it reaches the evaluator.
// Wrap it with fmt.Errorf to say what failed.
var ErrValidation = errors.New("validation failed")

// Status is the zone classification of a single value.
type Status string

const (
	StatusInZone    Status = "IN_ZONE"
	StatusOutOfZone Status = "OUT_OF_ZONE"
	StatusCritical  Status = "CRITICAL"
)

// Beacon is a named metric with an inclusive target zone and an optional
// critical threshold. Name identifies the beacon to the user; several beacons
// may track the same MetricName.
type Beacon struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	MetricName        string    `json:"metric_name"`
	MinValue          float64   `json:"min_value"`
	MaxValue          float64   `json:"max_value"`
	CriticalThreshold *float64  `json:"critical_threshold,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewBeacon builds a validated beacon with a fresh id.
func NewBeacon(metricName string, minValue, maxValue float64, critical *float64) (*Beacon, error) {
	b := &Beacon{
		ID:                uuid.New(),
		Name:              metricName,
		MetricName:        metricName,
		MinValue:          minValue,
		MaxValue:          maxValue,
		CriticalThreshold: critical,
		CreatedAt:         time.Now(),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the range invariants.
func (b *Beacon) Validate() error {
	if b.MetricName == "" {
		return fmt.Errorf("%w: metric name is required", ErrValidation)
	}
	if b.Name == "" {
		return fmt.Errorf("%w: beacon name is required", ErrValidation)
	}
	if !finite(b.MinValue) || !finite(b.MaxValue) {
		return fmt.Errorf("%w: range bounds must be finite", ErrValidation)
	}
	if b.MinValue > b.MaxValue {
		return fmt.Errorf("%w: min %.2f is above max %.2f", ErrValidation, b.MinValue, b.MaxValue)
	}
	if b.CriticalThreshold != nil && !finite(*b.CriticalThreshold) {
		return fmt.Errorf("%w: critical threshold must be finite", ErrValidation)
	}
	return nil
}

// Status classifies value against the beacon. The critical check runs first,
// so a threshold inside [MinValue, MaxValue] still wins.
func (b *Beacon) Status(value float64) Status {
	if b.CriticalThreshold != nil && value >= *b.CriticalThreshold {
		return StatusCritical
	}
	if value >= b.MinValue && value <= b.MaxValue {
		return StatusInZone
	}
	return StatusOutOfZone
}

// Reading is one timestamped sample of a beacon's metric.
type Reading struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// NewReading creates a reading with a fresh id.
func NewReading(at time.Time, value float64) Reading {
	return Reading{ID: uuid.New(), Timestamp: at, Value: value}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
