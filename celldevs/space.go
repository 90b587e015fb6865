package celldevs

import (
	"log"

	"github.com/sarchlab/epicell/sim"
)

// A Space holds the cells of a simulation and the edges between them.
type Space[S, V any] struct {
	engine  sim.Engine
	endTime sim.VTime
	hooks   []sim.Hook

	cells map[CellID]*Cell[S, V]
	order []CellID
}

// NewSpace creates an empty space. Cells stop publishing states after
// endTime. An endTime of zero means the space runs until no state changes.
func NewSpace[S, V any](engine sim.Engine, endTime sim.VTime) *Space[S, V] {
	if endTime < 0 {
		log.Panicf("end time %f is negative", endTime)
	}

	return &Space[S, V]{
		engine:  engine,
		endTime: endTime,
		cells:   make(map[CellID]*Cell[S, V]),
	}
}

// EndTime returns the time after which cells stop publishing states.
func (s *Space[S, V]) EndTime() sim.VTime {
	return s.endTime
}

// AddCell creates a cell. Cell IDs must be unique.
func (s *Space[S, V]) AddCell(
	id CellID,
	initial S,
	model Model[S, V],
) *Cell[S, V] {
	if _, found := s.cells[id]; found {
		log.Panicf("cell %s already exists", id)
	}

	c := newCell(id, s.engine, model, initial, s.endTime)
	for _, h := range s.hooks {
		c.AcceptHook(h)
	}

	s.cells[id] = c
	s.order = append(s.order, id)

	return c
}

// Connect makes a cell observe a neighbor through the given vicinity. A cell
// may observe itself.
func (s *Space[S, V]) Connect(cell, neighbor CellID, v V) {
	c := s.mustGetCell(cell)
	n := s.mustGetCell(neighbor)

	c.connect(n, v)
}

// Cell returns the cell with the given ID, or nil.
func (s *Space[S, V]) Cell(id CellID) *Cell[S, V] {
	return s.cells[id]
}

// Cells returns all the cells in the order they were added.
func (s *Space[S, V]) Cells() []*Cell[S, V] {
	cells := make([]*Cell[S, V], 0, len(s.order))
	for _, id := range s.order {
		cells = append(cells, s.cells[id])
	}

	return cells
}

// NumCells returns the number of cells.
func (s *Space[S, V]) NumCells() int {
	return len(s.order)
}

// AcceptHook registers a hook on every cell, including the cells added
// later.
func (s *Space[S, V]) AcceptHook(hook sim.Hook) {
	s.hooks = append(s.hooks, hook)

	for _, c := range s.cells {
		c.AcceptHook(hook)
	}
}

// Start publishes the initial state of every cell at the current time of
// the engine.
func (s *Space[S, V]) Start() {
	now := s.engine.CurrentTime()

	for _, id := range s.order {
		s.cells[id].start(now)
	}
}

func (s *Space[S, V]) mustGetCell(id CellID) *Cell[S, V] {
	c, found := s.cells[id]
	if !found {
		log.Panicf("cell %s does not exist", id)
	}

	return c
}
