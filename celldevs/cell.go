package celldevs

import (
	"fmt"
	"log"
	"reflect"

	"github.com/sarchlab/epicell/sim"
)

// HookPosStateChange triggers when a cell takes a new state, and once for
// the initial state of every cell when the space starts. The hook item is a
// StateChange.
var HookPosStateChange = &sim.HookPos{Name: "StateChange"}

// StateChange describes a cell taking a new state.
type StateChange[S any] struct {
	Time     sim.VTime
	Cell     CellID
	Previous S
	Current  S
	Initial  bool
	Text     string
}

// Report returns the time, the cell, and the formatted new state.
func (c StateChange[S]) Report() (sim.VTime, CellID, string) {
	return c.Time, c.Cell, c.Text
}

// CellStats counts what a cell did.
type CellStats struct {
	Computations uint64
	Transitions  uint64
	Outputs      uint64
	Dropped      uint64
}

// A Cell is a sim.Handler that evolves according to a Model.
type Cell[S, V any] struct {
	sim.HookableBase

	id      CellID
	engine  sim.Engine
	model   Model[S, V]
	endTime sim.VTime

	state          S
	neighborIDs    []CellID
	neighborStates map[CellID]S
	vicinities     map[CellID]V
	observers      []*Cell[S, V]

	computePending bool
	stats          CellStats
}

func newCell[S, V any](
	id CellID,
	engine sim.Engine,
	model Model[S, V],
	initial S,
	endTime sim.VTime,
) *Cell[S, V] {
	return &Cell[S, V]{
		id:             id,
		engine:         engine,
		model:          model,
		endTime:        endTime,
		state:          initial,
		neighborStates: make(map[CellID]S),
		vicinities:     make(map[CellID]V),
	}
}

// ID returns the identifier of the cell.
func (c *Cell[S, V]) ID() CellID {
	return c.id
}

// Name returns the name of the cell.
func (c *Cell[S, V]) Name() string {
	return string(c.id)
}

// State returns the current state of the cell.
func (c *Cell[S, V]) State() S {
	return c.state
}

// FormattedState returns the current state rendered by the model.
func (c *Cell[S, V]) FormattedState() string {
	return c.model.Format(c.state)
}

// Model returns the model of the cell.
func (c *Cell[S, V]) Model() Model[S, V] {
	return c.model
}

// Neighbors returns the neighbors in the order they were connected.
func (c *Cell[S, V]) Neighbors() []CellID {
	return append([]CellID(nil), c.neighborIDs...)
}

// NeighborState returns the last state the given neighbor published.
func (c *Cell[S, V]) NeighborState(id CellID) (S, bool) {
	s, ok := c.neighborStates[id]
	return s, ok
}

// Vicinity returns the vicinity towards the given neighbor.
func (c *Cell[S, V]) Vicinity(id CellID) (V, bool) {
	v, ok := c.vicinities[id]
	return v, ok
}

// Stats returns the counters of the cell.
func (c *Cell[S, V]) Stats() CellStats {
	return c.stats
}

// connect makes the cell observe the neighbor. Connecting the same neighbor
// again only replaces the vicinity.
func (c *Cell[S, V]) connect(neighbor *Cell[S, V], v V) {
	_, known := c.vicinities[neighbor.id]
	c.vicinities[neighbor.id] = v

	if known {
		return
	}

	c.neighborIDs = append(c.neighborIDs, neighbor.id)
	c.neighborStates[neighbor.id] = neighbor.state
	neighbor.observers = append(neighbor.observers, c)
}

// Handle handles the events scheduled for the cell.
func (c *Cell[S, V]) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *OutputEvent[S]:
		c.handleOutput(e)
		return nil
	case *ComputeEvent:
		return c.compute(e.Time())
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (c *Cell[S, V]) handleOutput(e *OutputEvent[S]) {
	c.stats.Outputs++

	for _, o := range c.observers {
		o.receive(e.Time(), c.id, e.State)
	}
}

// receive updates the view of a neighbor. The computation waits until all
// the same-time outputs are delivered.
func (c *Cell[S, V]) receive(now sim.VTime, from CellID, s S) {
	c.neighborStates[from] = s

	if c.computePending {
		return
	}

	c.computePending = true
	c.engine.Schedule(NewComputeEvent(now, c))
}

func (c *Cell[S, V]) compute(now sim.VTime) error {
	c.computePending = false

	next, err := c.model.LocalComputation(now, c.state, c.neighborhood())
	if err != nil {
		return fmt.Errorf("cell %s: %w", c.id, err)
	}

	c.stats.Computations++

	if c.model.Equal(next, c.state) {
		return nil
	}

	prev := c.state
	c.state = next
	c.stats.Transitions++

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosStateChange,
		Item: StateChange[S]{
			Time:     now,
			Cell:     c.id,
			Previous: prev,
			Current:  next,
			Text:     c.model.Format(next),
		},
	})

	c.scheduleOutput(now+c.model.OutputDelay(next), next)

	return nil
}

func (c *Cell[S, V]) neighborhood() []Neighbor[S, V] {
	n := make([]Neighbor[S, V], 0, len(c.neighborIDs))
	for _, id := range c.neighborIDs {
		n = append(n, Neighbor[S, V]{
			ID:       id,
			State:    c.neighborStates[id],
			Vicinity: c.vicinities[id],
		})
	}

	return n
}

// scheduleOutput publishes a state at the given time. Outputs that would
// happen after the end time are dropped. Outputs of the same time leave in
// the order they were scheduled.
func (c *Cell[S, V]) scheduleOutput(t sim.VTime, s S) {
	if c.endTime > 0 && t > c.endTime {
		c.stats.Dropped++
		return
	}

	c.engine.Schedule(NewOutputEvent(t, c, s))
}

func (c *Cell[S, V]) start(now sim.VTime) {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosStateChange,
		Item: StateChange[S]{
			Time:     now,
			Cell:     c.id,
			Previous: c.state,
			Current:  c.state,
			Initial:  true,
			Text:     c.model.Format(c.state),
		},
	})

	c.scheduleOutput(now, c.state)
}
