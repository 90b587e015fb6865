package datarecording

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/epicell/celldevs"
	"github.com/sarchlab/epicell/sim"
	"github.com/sarchlab/epicell/sir"
)

// StateTable is the default table of the StateRecorder.
const StateTable = "cell_states"

// StateEntry is a row of the state table. AgeFractions is a comma-separated
// list.
type StateEntry struct {
	Time         float64
	Cell         string
	Initial      bool
	Population   uint32
	AgeFractions string
	Susceptible  float64
	Infected     float64
	Recovered    float64
}

// StateRecorder is a hook that records every state a SIR cell takes.
type StateRecorder struct {
	recorder DataRecorder
	table    string
	count    uint64
}

// NewStateRecorder creates the state table and returns a hook that fills it.
func NewStateRecorder(recorder DataRecorder, table string) *StateRecorder {
	recorder.CreateTable(table, StateEntry{})

	return &StateRecorder{
		recorder: recorder,
		table:    table,
	}
}

// Count returns the number of recorded states.
func (r *StateRecorder) Count() uint64 {
	return r.count
}

// Func records the state changes.
func (r *StateRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != celldevs.HookPosStateChange {
		return
	}

	change, ok := ctx.Item.(celldevs.StateChange[sir.State])
	if !ok {
		return
	}

	r.recorder.InsertData(r.table, NewStateEntry(change))
	r.count++
}

// NewStateEntry converts a state change into a table row.
func NewStateEntry(change celldevs.StateChange[sir.State]) StateEntry {
	s := change.Current

	return StateEntry{
		Time:         float64(change.Time),
		Cell:         string(change.Cell),
		Initial:      change.Initial,
		Population:   s.Population,
		AgeFractions: formatFractions(s.AgeFractions),
		Susceptible:  s.Susceptible,
		Infected:     s.Infected,
		Recovered:    s.Recovered,
	}
}

// State rebuilds the SIR state of the row.
func (e StateEntry) State() (sir.State, error) {
	s := sir.State{
		Population:  e.Population,
		Susceptible: e.Susceptible,
		Infected:    e.Infected,
		Recovered:   e.Recovered,
	}

	if e.AgeFractions == "" {
		s.AgeFractions = []float64{}
		return s, nil
	}

	for _, f := range strings.Split(e.AgeFractions, ",") {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return sir.State{}, &sir.DecodeError{
				Record: "state entry",
				Field:  sir.FieldAgeFractions,
				Err:    fmt.Errorf("%w: %v", sir.ErrInvalidField, err),
			}
		}

		s.AgeFractions = append(s.AgeFractions, v)
	}

	return s, nil
}

func formatFractions(fractions []float64) string {
	parts := make([]string, len(fractions))
	for i, f := range fractions {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strings.Join(parts, ",")
}

// ReadStates returns the recorded states of a cell in time order. An empty
// cell name returns the states of all the cells.
func ReadStates(
	ctx context.Context,
	reader DataReader,
	table string,
	cell string,
) ([]StateEntry, error) {
	reader.MapTable(table, StateEntry{})

	params := QueryParams{OrderBy: "Time, rowid"}
	if cell != "" {
		params.Where = "Cell = ?"
		params.Args = []any{cell}
	}

	results, _, err := reader.Query(ctx, table, params)
	if err != nil {
		return nil, err
	}

	entries := make([]StateEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, *r.(*StateEntry))
	}

	return entries, nil
}
