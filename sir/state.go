// Package sir implements an age-stratified SIR epidemic cell model.
//
// The package is independent from any simulation engine. It defines the
// state of a cell, the vicinity between a cell and a neighbor, the
// virulence/recovery configuration, and the pure functions that compute the
// next state of a cell from the states of its neighbors.
package sir

import (
	"strconv"
	"strings"
)

// State is the epidemiological state of a cell. Susceptible, Infected, and
// Recovered are fractions of Population and are expected to add up to 1.
// AgeFractions splits the population into age groups and is expected to add
// up to 1 as well. Neither expectation is enforced.
type State struct {
	Population   uint32
	AgeFractions []float64
	Susceptible  float64
	Infected     float64
	Recovered    float64
}

// DefaultState returns the state of a cell that nobody configured: no
// population, five empty age groups, and everyone susceptible.
func DefaultState() State {
	return State{
		Population:   0,
		AgeFractions: []float64{0, 0, 0, 0, 0},
		Susceptible:  1,
		Infected:     0,
		Recovered:    0,
	}
}

// Clone returns a copy of the state that does not share the age fractions.
func (s State) Clone() State {
	c := s
	c.AgeFractions = append([]float64(nil), s.AgeFractions...)

	return c
}

// String formats the state as <population,f0,...,fn,susceptible,infected,recovered>.
func (s State) String() string {
	return FormatState(s)
}

// StatesEqual tells if two states are the same. Any difference in a scalar
// field, in the number of age groups, or in any age fraction makes the states
// different. Values are compared exactly.
func StatesEqual(a, b State) bool {
	if a.Population != b.Population ||
		len(a.AgeFractions) != len(b.AgeFractions) ||
		a.Susceptible != b.Susceptible ||
		a.Infected != b.Infected ||
		a.Recovered != b.Recovered {
		return false
	}

	for i := range a.AgeFractions {
		if a.AgeFractions[i] != b.AgeFractions[i] {
			return false
		}
	}

	return true
}

// CompareForDelayOrdering is the ordering used when states wait in a delay
// queue. States have no natural order, so it always reports that one state is
// not less than the other. Queues must fall back to insertion order.
func CompareForDelayOrdering(_, _ State) bool {
	return false
}

// FormatState renders a state as <population,f0,...,fn,susceptible,infected,recovered>.
func FormatState(s State) string {
	var b strings.Builder

	b.WriteByte('<')
	b.WriteString(strconv.FormatUint(uint64(s.Population), 10))
	b.WriteByte(',')

	for _, f := range s.AgeFractions {
		b.WriteString(formatFloat(f))
		b.WriteByte(',')
	}

	b.WriteString(formatFloat(s.Susceptible))
	b.WriteByte(',')
	b.WriteString(formatFloat(s.Infected))
	b.WriteByte(',')
	b.WriteString(formatFloat(s.Recovered))
	b.WriteByte('>')

	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
