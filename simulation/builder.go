package simulation

import (
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/epicell/celldevs"
	"github.com/sarchlab/epicell/datarecording"
	"github.com/sarchlab/epicell/monitoring"
	"github.com/sarchlab/epicell/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	endTime        sim.VTime
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	recordOn       bool
	outputFileName string
	eventLogger    *log.Logger
	stateLogger    *log.Logger
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
		recordOn:  true,
	}
}

// WithEndTime sets the time after which cells stop publishing states. Zero
// runs the simulation until no state changes.
func (b Builder) WithEndTime(t sim.VTime) Builder {
	b.endTime = t
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in a browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithoutRecording sets the simulation to not record the cell states.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithEventLogger prints every event into the logger.
func (b Builder) WithEventLogger(logger *log.Logger) Builder {
	b.eventLogger = logger
	return b
}

// WithStateLogger prints every cell state into the logger.
func (b Builder) WithStateLogger(logger *log.Logger) Builder {
	b.stateLogger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.endTime < 0 {
		log.Panicf("end time %f is negative", b.endTime)
	}

	if !b.monitorOn && (b.monitorPort != 0 || b.openBrowser) {
		log.Panic("monitor options cannot be set when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		log.Panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:            xid.New().String(),
		endTime:       b.endTime,
		engine:        sim.NewSerialEngine(),
		cellNameIndex: make(map[string]int),
	}

	if b.eventLogger != nil {
		s.engine.AcceptHook(sim.NewEventLogger(b.eventLogger))
	}

	if b.stateLogger != nil {
		s.hooks = append(s.hooks, celldevs.NewStateLogger(b.stateLogger))
	}

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "epicell_sim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.stateRecorder = datarecording.NewStateRecorder(
			s.dataRecorder, datarecording.StateTable)
		s.hooks = append(s.hooks, s.stateRecorder)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		if b.openBrowser {
			s.monitor.WithBrowser()
		}

		s.monitor.RegisterEngine(s.engine)
		s.monitor.StartServer()
	}

	return s
}
