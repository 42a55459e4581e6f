package catalog

import (
	"strings"

	"PulseBeacon/internal/model"
)

func threshold(v float64) *float64 { return &v }

var templates = []model.BeaconTemplate{
	{Key: "running-pace", Name: "Running Pace", Category: model.CategoryRunning, MetricName: "Pace (min/km)", MinValue: 4.0, MaxValue: 6.0, CriticalThreshold: threshold(3.5), Description: "Monitor your running pace per kilometer"},
	{Key: "running-heart-rate", Name: "Running Heart Rate", Category: model.CategoryRunning, MetricName: "Heart Rate (bpm)", MinValue: 140, MaxValue: 160, CriticalThreshold: threshold(190), Description: "Target heart rate zone for running"},
	{Key: "cycling-speed", Name: "Cycling Speed", Category: model.CategoryCycling, MetricName: "Speed (km/h)", MinValue: 20, MaxValue: 30, CriticalThreshold: threshold(40), Description: "Monitor cycling speed"},
	{Key: "cycling-power", Name: "Cycling Power", Category: model.CategoryCycling, MetricName: "Power (W)", MinValue: 150, MaxValue: 250, CriticalThreshold: threshold(350), Description: "Cycling power output"},
	{Key: "bench-press", Name: "Bench Press", Category: model.CategoryWeightlifting, MetricName: "Weight (kg)", MinValue: 60, MaxValue: 80, CriticalThreshold: threshold(100), Description: "Bench press weight monitoring"},
	{Key: "squat-weight", Name: "Squat Weight", Category: model.CategoryWeightlifting, MetricName: "Weight (kg)", MinValue: 80, MaxValue: 120, CriticalThreshold: threshold(150), Description: "Squat weight monitoring"},
	{Key: "rpe-scale", Name: "RPE Scale", Category: model.CategoryWeightlifting, MetricName: "RPE (1-10)", MinValue: 6, MaxValue: 8, CriticalThreshold: threshold(10), Description: "Rate of Perceived Exertion"},
	{Key: "swimming-pace", Name: "Swimming Pace", Category: model.CategorySwimming, MetricName: "Pace (min/100m)", MinValue: 1.5, MaxValue: 2.0, CriticalThreshold: threshold(1.2), Description: "Swimming pace per 100 meters"},
	{Key: "resting-heart-rate", Name: "Resting Heart Rate", Category: model.CategoryGeneral, MetricName: "Heart Rate (bpm)", MinValue: 60, MaxValue: 80, CriticalThreshold: threshold(100), Description: "Resting heart rate monitoring"},
	{Key: "body-weight", Name: "Body Weight", Category: model.CategoryGeneral, MetricName: "Weight (kg)", MinValue: 70, MaxValue: 80, Description: "Body weight tracking"},
	{Key: "blood-pressure", Name: "Blood Pressure", Category: model.CategoryGeneral, MetricName: "Systolic (mmHg)", MinValue: 110, MaxValue: 130, CriticalThreshold: threshold(140), Description: "Systolic blood pressure"},
	{Key: "cardio-zone", Name: "Cardio Zone", Category: model.CategoryCardio, MetricName: "Heart Rate (bpm)", MinValue: 120, MaxValue: 150, CriticalThreshold: threshold(180), Description: "Cardio heart rate zone"},
}

// Templates returns every built-in beacon template.
func Templates() []model.BeaconTemplate {
	out := make([]model.BeaconTemplate, len(templates))
	copy(out, templates)
	return out
}

// TemplatesFor filters templates by category.
func TemplatesFor(category model.SportCategory) []model.BeaconTemplate {
	var out []model.BeaconTemplate
	for _, t := range templates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Template looks a template up by key or case-insensitive name.
func Template(ref string) (model.BeaconTemplate, bool) {
	for _, t := range templates {
		if t.Key == ref || strings.EqualFold(t.Name, ref) {
			return t, true
		}
	}
	return model.BeaconTemplate{}, false
}
