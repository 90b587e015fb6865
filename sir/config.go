package sir

// Default virulence and recovery rates, used when a cell has no config.
const (
	DefaultVirulence = 0.6
	DefaultRecovery  = 0.4
)

// Config holds the per-age-group rates of a cell. Virulence is the
// transmission coefficient and Recovery is the fraction of the infected
// population that recovers in one step.
type Config struct {
	Virulence []float64
	Recovery  []float64
}

// DefaultConfig returns a single age group config with the default rates.
func DefaultConfig() Config {
	return Config{
		Virulence: []float64{DefaultVirulence},
		Recovery:  []float64{DefaultRecovery},
	}
}

// NewConfig creates a config. The rates are copied.
func NewConfig(virulence, recovery []float64) Config {
	return Config{
		Virulence: append([]float64(nil), virulence...),
		Recovery:  append([]float64(nil), recovery...),
	}
}
