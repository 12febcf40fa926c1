package models

// Risk score bands. A score is in [0,100]; the bands are advisory labels
// used in audit records and alerting.
const (
	RiskLow      = 0
	RiskMedium   = 50
	RiskHigh     = 75
	RiskCritical = 90
)

// RiskAssessment is the explainable result of scoring one candidate
// transaction. It is derived per command and never persisted outside the
// audit log.
type RiskAssessment struct {
	Score   int      `json:"score"`
	Factors []string `json:"factors,omitempty"`
}

// HasFactor reports whether a named factor contributed to the score.
func (r RiskAssessment) HasFactor(name string) bool {
	for _, f := range r.Factors {
		if f == name {
			return true
		}
	}
	return false
}

// Level maps the score to a coarse label.
func (r RiskAssessment) Level() string {
	switch {
	case r.Score >= RiskCritical:
		return "critical"
	case r.Score >= RiskHigh:
		return "high"
	case r.Score >= RiskMedium:
		return "medium"
	default:
		return "low"
	}
}
