package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kavya/transintelliflow/backend/internal/domain"
)

// Configuration errors. Generation fails immediately on either; no partial
// batch is ever produced.
var (
	ErrInvalidBatchSize  = errors.New("batch size must be at least 1")
	ErrInvalidTargetRate = fmt.Errorf("target rate must be within [%v, %v]", MinTargetRate, MaxTargetRate)
)

// Batch is the output of one generator run.
type Batch struct {
	Requests   []domain.TransactionRequest
	FraudCount int
	TargetRate float64
}

// Generator produces one ordered batch of synthetic transaction requests
// hitting an exact fraud quota. A Generator owns its randomness and quota
// counters, so instances never leak state across runs.
type Generator struct {
	cfg        Config
	rand       *rand.Rand
	targetRate float64
	archetypes []archetype
}

// New returns a Generator for a single run. A zero seed falls back to the
// current time; a zero target rate is drawn once, uniformly within bounds.
func New(cfg Config) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	rate := cfg.TargetRate
	if rate == 0 {
		rate = MinTargetRate + rng.Float64()*(MaxTargetRate-MinTargetRate)
	}

	return &Generator{
		cfg:        cfg,
		rand:       rng,
		targetRate: rate,
		archetypes: fraudArchetypes(),
	}
}

// TargetRate reports the rate resolved for this run.
func (g *Generator) TargetRate() float64 {
	return g.targetRate
}

// Generate synthesises the batch. The fraud quota is exact: the emitted batch
// contains floor(batchSize * targetRate) fraud-patterned requests for any
// seed, enforced by the deadline rule below. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Batch, error) {
	if g.cfg.BatchSize < 1 {
		return Batch{}, ErrInvalidBatchSize
	}
	if g.targetRate < MinTargetRate || g.targetRate > MaxTargetRate {
		return Batch{}, ErrInvalidTargetRate
	}

	batchSize := g.cfg.BatchSize
	targetFraudCount := int(math.Floor(float64(batchSize) * g.targetRate))
	now := time.Now().UTC()

	requests := make([]domain.TransactionRequest, batchSize)
	fraudEmitted := 0

	for i := 0; i < batchSize; i++ {
		if err := ctx.Err(); err != nil {
			return Batch{}, err
		}

		// remaining counts the items not yet emitted, including this one.
		remaining := batchSize - i
		needed := targetFraudCount - fraudEmitted

		emitFraud := false
		switch {
		case needed >= remaining:
			// Deadline rule: no slack left, this item must carry the quota.
			emitFraud = true
		case fraudEmitted < targetFraudCount:
			// The 1.5 multiplier front-loads fraud so the deadline rule
			// rarely fires on consecutive trailing items.
			p := float64(needed) / float64(remaining) * 1.5
			if p > 1 {
				p = 1
			}
			emitFraud = g.rand.Float64() < p
		}

		if emitFraud {
			requests[i] = g.fraudRequest(now)
			fraudEmitted++
		} else {
			requests[i] = g.legitimateRequest(now)
		}
	}

	return Batch{
		Requests:   requests,
		FraudCount: fraudEmitted,
		TargetRate: g.targetRate,
	}, nil
}

func (g *Generator) fraudRequest(base time.Time) domain.TransactionRequest {
	arch := g.archetypes[g.rand.Intn(len(g.archetypes))]
	hour := arch.hours[g.rand.Intn(len(arch.hours))]

	return domain.TransactionRequest{
		ID:             uuid.NewString(),
		CustomerID:     g.randomCustomerID(),
		Amount:         g.uniformAmount(arch.minAmount, arch.maxAmount),
		AccountAgeDays: g.uniformInt(arch.minAccountAge, arch.maxAccountAge),
		Channel:        arch.channels[g.rand.Intn(len(arch.channels))],
		KYCVerified:    "No",
		Hour:           hour,
		Timestamp:      g.timestampAt(base, hour),
	}
}

func (g *Generator) legitimateRequest(base time.Time) domain.TransactionRequest {
	channels := domain.Channels()
	hour := g.uniformInt(legitMinHour, legitMaxHour)

	return domain.TransactionRequest{
		ID:             uuid.NewString(),
		CustomerID:     g.randomCustomerID(),
		Amount:         g.uniformAmount(legitMinAmount, legitMaxAmount),
		AccountAgeDays: g.uniformInt(legitMinAccountAge, legitMaxAccountAge),
		Channel:        channels[g.rand.Intn(len(channels))],
		KYCVerified:    "Yes",
		Hour:           hour,
		Timestamp:      g.timestampAt(base, hour),
	}
}

func (g *Generator) randomCustomerID() string {
	return fmt.Sprintf("CUST-%06d", g.rand.Intn(1000000))
}

func (g *Generator) uniformAmount(min, max float64) float64 {
	return math.Round((min+g.rand.Float64()*(max-min))*100) / 100
}

func (g *Generator) uniformInt(min, max int) int {
	return min + g.rand.Intn(max-min+1)
}

func (g *Generator) timestampAt(base time.Time, hour int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), hour,
		g.rand.Intn(60), g.rand.Intn(60), 0, time.UTC)
}
