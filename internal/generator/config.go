package generator

// Bounds accepted for the per-run target fraud rate.
const (
	MinTargetRate = 0.09
	MaxTargetRate = 0.15
)

// Config drives a single synthetic workload run.
type Config struct {
	BatchSize  int
	TargetRate float64 // fraction of fraud-patterned requests; 0 picks one per run
	Seed       int64
}

// DefaultConfig returns baseline settings for an operator-triggered run.
func DefaultConfig() Config {
	return Config{
		BatchSize:  100,
		TargetRate: 0.12,
		Seed:       0,
	}
}
