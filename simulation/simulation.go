// Package simulation assembles the engine, the recorder, and the monitor
// around the cell spaces of a simulation.
package simulation

import (
	"log"

	"github.com/sarchlab/epicell/datarecording"
	"github.com/sarchlab/epicell/monitoring"
	"github.com/sarchlab/epicell/pandemic"
	"github.com/sarchlab/epicell/sim"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id      string
	endTime sim.VTime
	engine  *sim.SerialEngine
	hooks   []sim.Hook

	dataRecorder  datarecording.DataRecorder
	stateRecorder *datarecording.StateRecorder
	monitor       *monitoring.Monitor

	spaces        []*pandemic.Space
	cells         []*pandemic.Cell
	cellNameIndex map[string]int
}

// ID returns the unique identifier of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// EndTime returns the time after which cells stop publishing states.
func (s *Simulation) EndTime() sim.VTime {
	return s.endTime
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation, or nil if
// recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetStateRecorder returns the hook that records the cell states, or nil if
// recording is disabled.
func (s *Simulation) GetStateRecorder() *datarecording.StateRecorder {
	return s.stateRecorder
}

// GetMonitor returns the monitor used in the simulation, or nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// NewSpace creates an empty space driven by the engine of the simulation.
// The space still needs to be registered once populated.
func (s *Simulation) NewSpace() *pandemic.Space {
	return pandemic.NewSpace(s.engine, s.endTime)
}

// RegisterSpace attaches the loggers and the recorder to the cells of the
// space and makes them visible to the monitor. Cell names must be unique
// across the simulation.
func (s *Simulation) RegisterSpace(space *pandemic.Space) {
	for _, c := range space.Cells() {
		s.registerCell(c)
	}

	for _, h := range s.hooks {
		space.AcceptHook(h)
	}

	if s.monitor != nil {
		s.monitor.RegisterSpace(space)
	}

	s.spaces = append(s.spaces, space)
}

func (s *Simulation) registerCell(c *pandemic.Cell) {
	name := c.Name()
	if _, found := s.cellNameIndex[name]; found {
		log.Panicf("cell %s already registered", name)
	}

	s.cells = append(s.cells, c)
	s.cellNameIndex[name] = len(s.cells) - 1
}

// Spaces returns the registered spaces.
func (s *Simulation) Spaces() []*pandemic.Space {
	return s.spaces
}

// Cells returns all the registered cells.
func (s *Simulation) Cells() []*pandemic.Cell {
	return s.cells
}

// GetCellByName returns the cell with the given name, or nil.
func (s *Simulation) GetCellByName(name string) *pandemic.Cell {
	i, found := s.cellNameIndex[name]
	if !found {
		return nil
	}

	return s.cells[i]
}

// Summary aggregates the current states of all the cells.
func (s *Simulation) Summary() pandemic.Summary {
	return pandemic.Summarize(s.cells)
}

// Run starts all the spaces and runs the engine until no event is left or a
// cell fails.
func (s *Simulation) Run() error {
	var bar *monitoring.ProgressBar
	if s.monitor != nil && s.endTime > 0 {
		bar = s.monitor.CreateProgressBar("Simulated time", uint64(s.endTime))
		s.engine.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == sim.HookPosAfterEvent {
				bar.SetFinished(uint64(s.engine.CurrentTime()))
			}
		}))
	}

	for _, space := range s.spaces {
		space.Start()
	}

	err := s.engine.Run()
	s.engine.Finished()

	if bar != nil {
		s.monitor.CompleteProgressBar(bar)
	}

	return err
}

// Terminate flushes the recorded data and stops the monitor.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		err := s.dataRecorder.Close()
		if err != nil {
			log.Printf("closing data recorder: %v", err)
		}
	}

	if s.monitor != nil {
		err := s.monitor.StopServer()
		if err != nil {
			log.Printf("stopping monitor: %v", err)
		}
	}
}
