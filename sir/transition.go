package sir

import "math"

// NewInfections returns the fraction of the cell's population that becomes
// infected in one step because of its neighbors.
//
// Each neighbor contributes, per age group i of the neighbor,
//
//	infected × population × ageFraction[i] × movement[i] × connection[i] × virulence[i]
//
// and the total pressure is scaled by the susceptible fraction over the
// cell's population. The result never exceeds the susceptible fraction.
//
// The loop over age groups is bounded by the neighbor's own age fractions.
// Extra virulence or vicinity entries are ignored, missing ones are a
// contract violation, and so is a cell without population.
func NewInfections(
	current State,
	neighbors []Neighbor,
	virulence []float64,
) (float64, error) {
	if current.Population == 0 {
		return 0, violation("new infections",
			"cell population is zero")
	}

	aux := 0.0
	for _, n := range neighbors {
		groups := len(n.State.AgeFractions)
		v := n.Vicinity

		if len(virulence) < groups ||
			len(v.Movement) < groups ||
			len(v.Connection) < groups {
			return 0, violation("new infections",
				"neighbor has %d age groups, but virulence has %d, "+
					"movement has %d, and connection has %d",
				groups, len(virulence), len(v.Movement), len(v.Connection))
		}

		mobile := n.State.Infected * float64(n.State.Population)
		for i := 0; i < groups; i++ {
			aux += mobile *
				n.State.AgeFractions[i] *
				v.Movement[i] *
				v.Connection[i] *
				virulence[i]
		}
	}

	s := current.Susceptible

	return math.Min(s, s*aux/float64(current.Population)), nil
}

// NewRecoveries returns the fraction of the cell's population that recovers
// in one step. The loop is bounded by the cell's age groups and the recovery
// vector must cover all of them.
func NewRecoveries(current State, recovery []float64) (float64, error) {
	groups := len(current.AgeFractions)
	if len(recovery) < groups {
		return 0, violation("new recoveries",
			"cell has %d age groups, but recovery has %d",
			groups, len(recovery))
	}

	newR := 0.0
	for i := 0; i < groups; i++ {
		newR += current.Infected * current.AgeFractions[i] * recovery[i]
	}

	return newR, nil
}

// Next derives the state that follows current, given the fraction of newly
// infected population. Infected and recovered fractions are rounded to two
// decimals and the susceptible fraction is their complement. Population and
// age fractions are carried over.
func Next(current State, cfg Config, newInfections float64) (State, error) {
	newR, err := NewRecoveries(current, cfg.Recovery)
	if err != nil {
		return State{}, err
	}

	next := current.Clone()
	next.Recovered = Round2(current.Recovered + newR)
	next.Infected = Round2(current.Infected + newInfections - newR)
	next.Susceptible = 1 - next.Infected - next.Recovered

	return next, nil
}

// Step runs one full transition of a cell: infection pressure from the
// neighbors followed by the state update.
func Step(current State, neighbors []Neighbor, cfg Config) (State, error) {
	newI, err := NewInfections(current, neighbors, cfg.Virulence)
	if err != nil {
		return State{}, err
	}

	return Next(current, cfg, newI)
}

// OutputDelay is the time between computing a state and making it visible to
// the neighbors. It is always one time unit.
func OutputDelay(State) float64 {
	return 1
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
