package domain

import "time"

// RiskLevel is an EFFIS Fire Weather Index danger class.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
	RiskExtreme  RiskLevel = "extreme"
)

// riskScale orders the danger classes from least to most severe.
var riskScale = []RiskLevel{
	RiskVeryLow, RiskLow, RiskModerate, RiskHigh, RiskVeryHigh, RiskExtreme,
}

// Valid reports whether l is a known danger class.
func (l RiskLevel) Valid() bool {
	for _, s := range riskScale {
		if l == s {
			return true
		}
	}
	return false
}

// RiskResult is an immutable fire-risk answer for a coordinate. Created by
// one orchestrator tier, optionally written through to the spatial cache,
// and never mutated afterwards; a repeat query produces a new value.
type RiskResult struct {
	Level     RiskLevel `json:"level"`
	Source    Freshness `json:"source"`
	QueriedAt time.Time `json:"queried_at"`
}
