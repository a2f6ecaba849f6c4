package domain

// Label is the fraud classification assigned by the scoring model.
type Label string

// Possible classification labels.
const (
	LabelFraud      Label = "Fraud"
	LabelLegitimate Label = "Legitimate"
)

// Opposite returns the logical complement of the label.
func (l Label) Opposite() Label {
	if l == LabelFraud {
		return LabelLegitimate
	}
	return LabelFraud
}

// RiskLevel buckets a risk score for operator display.
type RiskLevel string

// Risk level buckets.
const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// RiskLevelFor maps a fraud probability to its display bucket.
func RiskLevelFor(riskScore float64) RiskLevel {
	switch {
	case riskScore > 0.7:
		return RiskHigh
	case riskScore > 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ScoringResult is the outcome returned by the scoring service for one request.
type ScoringResult struct {
	TransactionID  string
	PredictedLabel Label
	RiskScore      float64 // fraud probability in [0,1]
	Confidence     float64 // distance from the decision boundary, in percent
	RiskLevel      RiskLevel
	RuleFlags      []string
}
