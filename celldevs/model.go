// Package celldevs runs cell models on a discrete event engine.
//
// A cell owns its current state and a read-only view of the last state each
// of its neighbors published, together with the vicinity of the edge towards
// every neighbor. When neighbor states arrive, the cell asks its Model for
// the next state once per instant. A new state that differs from the current
// one is published to the observing cells after the model's output delay.
package celldevs

import "github.com/sarchlab/epicell/sim"

// CellID identifies a cell in a space.
type CellID string

// Neighbor is what a cell knows about one of its neighbors.
type Neighbor[S, V any] struct {
	ID       CellID
	State    S
	Vicinity V
}

// A Model decides how a cell evolves. S is the cell state and V is the
// vicinity between a cell and a neighbor.
type Model[S, V any] interface {
	// LocalComputation returns the next state of a cell. Neighbors are given
	// in the order they were connected.
	LocalComputation(now sim.VTime, current S, neighbors []Neighbor[S, V]) (S, error)

	// OutputDelay returns how long it takes before a new state is visible
	// to the neighbors.
	OutputDelay(s S) sim.VTime

	// Equal tells if two states are the same. Only changed states are
	// published.
	Equal(a, b S) bool

	// Format renders a state for logs.
	Format(s S) string
}
