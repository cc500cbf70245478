package simulation

import (
	"log"

	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/datarecording"
	"github.com/sarchlab/stacktherm/monitoring"
	"github.com/sarchlab/stacktherm/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	calc           calculator.Builder
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	recordOn       bool
	outputFileName string
	logger         *log.Logger
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		calc:      calculator.MakeBuilder(),
		monitorOn: true,
		recordOn:  true,
	}
}

// WithCalculator sets how the calculator is built.
func (b Builder) WithCalculator(cb calculator.Builder) Builder {
	b.calc = cb
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

// WithBrowser opens the monitoring page once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithoutRecording disables the SQLite recorder.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithLogger prints every calculator hook invocation to the logger.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && (b.monitorPort != 0 || b.openBrowser) {
		panic("monitor options cannot be set when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:      sim.NewRunID(),
		calc:    b.calc.Build(),
		metrics: monitoring.NewMetrics(),
	}

	s.calc.AcceptHook(s.metrics)

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "stacktherm_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.calc.AcceptHook(datarecording.NewSampleRecorder(s.dataRecorder))
	}

	if b.logger != nil {
		s.calc.AcceptHook(sim.NewPosLogHook(b.logger))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		if b.openBrowser {
			s.monitor.WithBrowser()
		}

		s.monitor.RegisterCalculator(s.calc)
		s.monitor.RegisterMetrics(s.metrics)
		s.monitor.StartServer()
	}

	return s
}
