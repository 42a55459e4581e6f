package model

// SportCategory groups beacon templates.
type SportCategory string

const (
	CategoryRunning       SportCategory = "Running"
	CategoryCycling       SportCategory = "Cycling"
	CategoryWeightlifting SportCategory = "Weightlifting"
	CategorySwimming      SportCategory = "Swimming"
	CategoryGeneral       SportCategory = "General Health"
	CategoryCardio        SportCategory = "Cardio"
)

// Categories lists every SportCategory in display order.
var Categories = []SportCategory{
	CategoryRunning,
	CategoryCycling,
	CategoryWeightlifting,
	CategorySwimming,
	CategoryGeneral,
	CategoryCardio,
}

// BeaconTemplate is a preset range for a common metric.
type BeaconTemplate struct {
	Key               string
	Name              string
	Category          SportCategory
	MetricName        string
	MinValue          float64
	MaxValue          float64
	CriticalThreshold *float64
	Description       string
}

// Beacon builds a new beacon from the template, named after it.
func (t BeaconTemplate) Beacon() (*Beacon, error) {
	var critical *float64
	if t.CriticalThreshold != nil {
		v := *t.CriticalThreshold
		critical = &v
	}
	b, err := NewBeacon(t.MetricName, t.MinValue, t.MaxValue, critical)
	if err != nil {
		return nil, err
	}
	b.Name = t.Name
	return b, nil
}
