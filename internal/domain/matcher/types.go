package matcher

// Config holds matcher tolerances.
type Config struct {
	AmountTolerance      float64 // currency units, default 0.01
	SettlementWindowDays int     // forward-only posting lag, default 6
}

// DefaultConfig returns the tolerances used across the reconciler: the
// amount epsilon is the same one the payment balance check uses.
func DefaultConfig() Config {
	return Config{
		AmountTolerance:      0.01,
		SettlementWindowDays: 6,
	}
}
