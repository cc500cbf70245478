package thermal

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/stacktherm/grid"
	"github.com/sarchlab/stacktherm/report"
)

// ErrNoSample is reported when a sample is printed before one is saved.
var ErrNoSample = errors.New("no sample saved")

// ErrNotSolved is reported when a steady state is printed before it is
// solved.
var ErrNotSolved = errors.New("steady state not solved")

// A Sample is the power map that drove one transient step.
type Sample struct {
	ID    uint64
	Cycle uint64
	Power *grid.Grid3D
}

// SaveSamplePower keeps a copy of the power map of a sample, resized to the
// solver grid.
func (s *Solver) SaveSamplePower(p *grid.Grid3D, cycle, sampleID uint64) error {
	pv, err := s.powerVector(p)
	if err != nil {
		return err
	}

	resized := grid.New3D(s.cfg.X, s.cfg.Y, s.cfg.Layers)
	resized.SetValues(pv)

	s.sample = Sample{ID: sampleID, Cycle: cycle, Power: resized}
	s.hasSample = true

	return nil
}

// LastSample returns a copy of the last saved sample.
func (s *Solver) LastSample() (Sample, bool) {
	if !s.hasSample {
		return Sample{}, false
	}

	c := s.sample
	c.Power = s.sample.Power.Clone()

	return c, true
}

// PrintSamplePower writes the power map of the last saved sample.
func (s *Solver) PrintSamplePower(w io.Writer) error {
	if !s.hasSample {
		return ErrNoSample
	}

	return report.WriteField(w,
		fmt.Sprintf("sample %d power at cycle %d", s.sample.ID, s.sample.Cycle),
		s.sample.Power)
}

// PrintTransientTemperature writes the transient temperature field labeled
// with a sample ID.
func (s *Solver) PrintTransientTemperature(w io.Writer, sampleID uint64) error {
	return report.WriteField(w,
		fmt.Sprintf("sample %d transient temperature (K)", sampleID),
		s.TransientTemperature())
}

// PrintSteadyState writes the last steady-state temperature field.
func (s *Solver) PrintSteadyState(w io.Writer) error {
	if s.steady == nil {
		return ErrNotSolved
	}

	return report.WriteField(w, "steady-state temperature (K)", s.steady)
}
