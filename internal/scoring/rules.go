package scoring

import (
	"context"
	"math"
	"strings"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

// RuleScorer is a local scorer that reproduces the hosted model's behaviour:
// an additive probability over known fraud signals combined with a rule-based
// decision layer. It backs offline simulation runs and tests, where no
// scoring service is reachable.
type RuleScorer struct{}

// NewRuleScorer returns a stateless rule-based scorer.
func NewRuleScorer() RuleScorer {
	return RuleScorer{}
}

// Score implements the Client interface.
func (RuleScorer) Score(_ context.Context, req domain.TransactionRequest) (domain.ScoringResult, error) {
	prob := fraudProbability(req)
	isFraud, flags := applyRules(req, prob)

	label := domain.LabelLegitimate
	if isFraud {
		label = domain.LabelFraud
	}

	level := domain.RiskLevelFor(prob)
	if isFraud && level == domain.RiskLow {
		if len(flags) < 3 {
			level = domain.RiskMedium
		} else {
			level = domain.RiskHigh
		}
	}

	return domain.ScoringResult{
		TransactionID:  req.ID,
		PredictedLabel: label,
		RiskScore:      round4(prob),
		Confidence:     round2(math.Abs(prob-0.5) * 200),
		RiskLevel:      level,
		RuleFlags:      flags,
	}, nil
}

// Healthy implements the Client interface; the local scorer is always ready.
func (RuleScorer) Healthy(context.Context) error {
	return nil
}

func fraudProbability(req domain.TransactionRequest) float64 {
	prob := 0.05

	switch {
	case req.Amount > 50000:
		prob += 0.35
	case req.Amount > 20000:
		prob += 0.20
	case req.Amount > 10000:
		prob += 0.10
	}

	switch {
	case req.AccountAgeDays < 7:
		prob += 0.25
	case req.AccountAgeDays < 30:
		prob += 0.15
	case req.AccountAgeDays < 90:
		prob += 0.05
	}

	switch {
	case req.Hour >= 0 && req.Hour <= 5:
		prob += 0.20
	case req.Hour >= 22:
		prob += 0.10
	}

	if !kycVerified(req) {
		prob += 0.20
	}

	switch req.Channel {
	case domain.ChannelATM:
		prob += 0.10
	case domain.ChannelPOS:
		prob += 0.05
	}

	return math.Min(prob, 0.98)
}

func applyRules(req domain.TransactionRequest, prob float64) (bool, []string) {
	flags := []string{}
	kyc := kycVerified(req)
	cashChannel := req.Channel == domain.ChannelATM || req.Channel == domain.ChannelPOS

	if req.Amount > 10000 && req.AccountAgeDays < 30 {
		flags = append(flags, "HIGH_VALUE_NEW_ACCOUNT")
	}
	if !kyc && req.Amount > 5000 {
		flags = append(flags, "UNVERIFIED_KYC_HIGH_AMOUNT")
	}
	if req.Hour >= 0 && req.Hour <= 5 && req.Amount > 3000 {
		flags = append(flags, "UNUSUAL_HOUR")
	}
	if req.Amount > 50000 {
		flags = append(flags, "VERY_HIGH_AMOUNT")
	}
	if req.AccountAgeDays <= 5 && req.Amount > 70000 && !kyc && req.Hour <= 4 {
		flags = append(flags, "EXTREME_FRAUD_PATTERN")
	}
	if req.AccountAgeDays < 7 && !kyc {
		flags = append(flags, "NEW_ACCOUNT_UNVERIFIED")
	}
	if cashChannel && req.Amount > 20000 {
		flags = append(flags, "HIGH_CASH_WITHDRAWAL")
	}

	extreme := false
	for _, f := range flags {
		if f == "EXTREME_FRAUD_PATTERN" {
			extreme = true
		}
	}

	var isFraud bool
	switch {
	case extreme:
		isFraud = true
	case len(flags) >= 3 && prob > 0.1:
		isFraud = true
	case len(flags) > 0 && prob > 0.3:
		isFraud = true
	case prob >= 0.7:
		isFraud = true
	case len(flags) > 0 && prob > 0.15:
		isFraud = true
	default:
		isFraud = prob >= 0.5
	}

	return isFraud, flags
}

func kycVerified(req domain.TransactionRequest) bool {
	return !strings.EqualFold(req.KYCVerified, "No")
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
