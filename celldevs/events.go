package celldevs

import "github.com/sarchlab/epicell/sim"

// OutputEvent publishes a state of a cell to the cells observing it.
type OutputEvent[S any] struct {
	*sim.EventBase
	State S
}

// NewOutputEvent creates an OutputEvent.
func NewOutputEvent[S any](t sim.VTime, handler sim.Handler, state S) *OutputEvent[S] {
	return &OutputEvent[S]{
		EventBase: sim.NewEventBase(t, handler),
		State:     state,
	}
}

// ComputeEvent asks a cell to compute its next state. It is a secondary
// event, so every neighbor state published at the same time has arrived
// before the computation.
type ComputeEvent struct {
	*sim.EventBase
}

// NewComputeEvent creates a ComputeEvent.
func NewComputeEvent(t sim.VTime, handler sim.Handler) *ComputeEvent {
	return &ComputeEvent{
		EventBase: sim.NewSecondaryEventBase(t, handler),
	}
}
