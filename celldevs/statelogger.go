package celldevs

import (
	"log"

	"github.com/sarchlab/epicell/sim"
)

// A StateReport is a hook item that describes a state taken by a cell.
type StateReport interface {
	Report() (now sim.VTime, cell CellID, state string)
}

// StateLogger is a hook that prints every state a cell takes.
type StateLogger struct {
	sim.LogHookBase
}

// NewStateLogger returns a new StateLogger which will write into the logger.
func NewStateLogger(logger *log.Logger) *StateLogger {
	h := new(StateLogger)
	h.Logger = logger

	return h
}

// Func writes a line with the time, the cell, and the state.
func (h *StateLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosStateChange {
		return
	}

	report, ok := ctx.Item.(StateReport)
	if !ok {
		return
	}

	now, cell, state := report.Report()
	h.Logger.Printf("%.10f, %s, %s", now, cell, state)
}
