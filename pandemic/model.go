// Package pandemic runs the age-stratified SIR model on cell spaces.
package pandemic

import (
	"github.com/sarchlab/epicell/celldevs"
	"github.com/sarchlab/epicell/sim"
	"github.com/sarchlab/epicell/sir"
)

// CellID identifies a cell in a space.
type CellID = celldevs.CellID

// Space is a space of SIR cells.
type Space = celldevs.Space[sir.State, sir.Vicinity]

// Cell is a SIR cell.
type Cell = celldevs.Cell[sir.State, sir.Vicinity]

// NewSpace creates an empty space of SIR cells.
func NewSpace(engine sim.Engine, endTime sim.VTime) *Space {
	return celldevs.NewSpace[sir.State, sir.Vicinity](engine, endTime)
}

// Model evolves a cell with a fixed virulence and recovery configuration.
type Model struct {
	cfg sir.Config
}

// NewModel creates a Model. The configuration is copied.
func NewModel(cfg sir.Config) *Model {
	return &Model{cfg: sir.NewConfig(cfg.Virulence, cfg.Recovery)}
}

// Config returns the configuration of the model.
func (m *Model) Config() sir.Config {
	return sir.NewConfig(m.cfg.Virulence, m.cfg.Recovery)
}

// LocalComputation runs one SIR step.
func (m *Model) LocalComputation(
	_ sim.VTime,
	current sir.State,
	neighbors []celldevs.Neighbor[sir.State, sir.Vicinity],
) (sir.State, error) {
	n := make([]sir.Neighbor, len(neighbors))
	for i, neighbor := range neighbors {
		n[i] = sir.Neighbor{State: neighbor.State, Vicinity: neighbor.Vicinity}
	}

	return sir.Step(current, n, m.cfg)
}

// OutputDelay returns the time before a new state is visible.
func (m *Model) OutputDelay(s sir.State) sim.VTime {
	return sim.VTime(sir.OutputDelay(s))
}

// Equal tells if two states are the same.
func (m *Model) Equal(a, b sir.State) bool {
	return sir.StatesEqual(a, b)
}

// Format renders a state.
func (m *Model) Format(s sir.State) string {
	return sir.FormatState(s)
}
