// Package simulation puts a calculator, its recorder and its monitor
// together under one run ID.
package simulation

import (
	"context"
	"time"

	"github.com/sarchlab/stacktherm/calculator"
	"github.com/sarchlab/stacktherm/datarecording"
	"github.com/sarchlab/stacktherm/monitoring"
	"github.com/sarchlab/stacktherm/trace"
)

// A Simulation is one run of the calculator.
type Simulation struct {
	id string

	calc         *calculator.Calculator
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	metrics      *monitoring.Metrics
}

// ID returns the run ID.
func (s *Simulation) ID() string {
	return s.id
}

// Calculator returns the calculator of the run.
func (s *Simulation) Calculator() *calculator.Calculator {
	return s.calc
}

// GetDataRecorder returns the data recorder used in the simulation, or nil
// if recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation, or nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetMetrics returns the Prometheus metrics of the run.
func (s *Simulation) GetMetrics() *monitoring.Metrics {
	return s.metrics
}

// Replay feeds a trace into the calculator, ticking at every power epoch.
// The size of the trace in bytes, if known, sizes the progress bar.
func (s *Simulation) Replay(r *trace.Reader, size uint64) (trace.Stats, error) {
	replayer := trace.NewReplayer(s.calc, s.calc.Collector().PowerEpoch())

	if s.monitor != nil {
		bar := s.monitor.CreateProgressBar("trace", size)
		defer s.monitor.CompleteProgressBar(bar)

		replayer.WithProgress(bar)
	}

	_, err := replayer.Replay(r)

	return replayer.Stats(), err
}

// Terminate flushes the recorder and stops the monitor.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		s.monitor.StopServer(ctx)
	}
}
