package ai

import (
	"time"

	"civicfix/types"
)

// UrgencyConfig holds the lookup tables for the deterministic fallback
// scorer used when the AI service is unreachable. The tables are plain data
// so deployments can tune them without code changes.
type UrgencyConfig struct {
	CategoryWeights     map[string]int
	SeverityMultipliers map[string]float64
	DurationFactors     map[string]float64
	AreaFactors         map[string]float64
}

// DefaultUrgencyConfig returns the stock weight tables.
func DefaultUrgencyConfig() UrgencyConfig {
	return UrgencyConfig{
		CategoryWeights: map[string]int{
			"Pothole":        75,
			"Road Issue":     70,
			"Traffic Signal": 85,
			"Waterlogging":   80,
			"Streetlight":    60,
			"Garbage":        55,
			"Sidewalk":       45,
			"Drainage":       70,
			"Other":          50,
		},
		SeverityMultipliers: map[string]float64{
			"Critical": 1.4,
			"High":     1.2,
			"Medium":   1.0,
			"Low":      0.8,
		},
		DurationFactors: map[string]float64{
			"Just noticed":      0.9,
			"1 day":             1.0,
			"1 week":            1.1,
			"2 weeks":           1.2,
			"1 month":           1.3,
			"More than 1 month": 1.4,
		},
		AreaFactors: map[string]float64{
			"Few people":       0.8,
			"Many people":      1.1,
			"Entire area":      1.3,
			"Traffic flow":     1.2,
			"Pedestrians only": 0.9,
		},
	}
}

// Score computes the weighted urgency for a report. The result is clamped to
// [1, 100].
func (cfg UrgencyConfig) Score(category string, mcq types.MCQResponses, reportedAt time.Time) int {
	base, ok := cfg.CategoryWeights[category]
	if !ok {
		base = 50
	}

	mult := lookup(cfg.SeverityMultipliers, mcq.Severity) *
		lookup(cfg.DurationFactors, mcq.Duration) *
		lookup(cfg.AreaFactors, mcq.AffectedArea) *
		timeFactor(reportedAt)

	score := int(float64(base) * mult)
	if score < 1 {
		score = 1
	}
	if score > 100 {
		score = 100
	}
	return score
}

func lookup(table map[string]float64, key string) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return 1.0
}

// timeFactor bumps urgency during weekday rush hours and late nights.
func timeFactor(t time.Time) float64 {
	if t.IsZero() {
		return 1.0
	}
	hour := t.Hour()
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		if hour >= 10 && hour <= 18 {
			return 1.0
		}
		return 1.1
	default:
		if (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19) {
			return 1.2
		}
		if hour >= 22 || hour <= 6 {
			return 1.1
		}
		return 1.0
	}
}

// LabelFor bands a score into its categorical urgency label.
func LabelFor(score int) string {
	switch {
	case score >= 90:
		return "Critical"
	case score >= 75:
		return "High"
	case score >= 50:
		return "Medium"
	case score >= 25:
		return "Low"
	default:
		return "Very Low"
	}
}
