package server

import (
	"context"

	"github.com/kavya/transintelliflow/backend/internal/scoring"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// ScoringHealthService verifies scoring-service reachability as part of
// health checks.
type ScoringHealthService struct {
	Client scoring.Client
}

// Probe implements the HealthService interface.
func (s ScoringHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Healthy(ctx)
}
