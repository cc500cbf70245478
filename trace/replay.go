package trace

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/stacktherm/geometry"
)

// ErrOutOfOrder is returned when an event goes back in time.
var ErrOutOfOrder = errors.New("event out of order")

// Target receives the replayed events. A calculator is a Target.
type Target interface {
	AddPower(
		energy float64,
		vault, bank, row, col int,
		single bool,
		cycle uint64,
	) error
	AddIOPower(energy float64, vault, bank, row, col int, cycle uint64) error
	Tick(cycle uint64) error
}

// Progress is told how many bytes of the trace have been read.
type Progress interface {
	SetFinished(amount uint64)
}

// A Replayer feeds a trace into a Target and ticks the Target at every
// interval boundary that the trace crosses.
type Replayer struct {
	target   Target
	interval uint64
	progress Progress

	lastTick  uint64
	lastCycle uint64
	events    uint64
	dropped   uint64
}

// NewReplayer creates a Replayer that ticks every interval cycles. The
// interval is normally the power epoch of the target.
func NewReplayer(target Target, interval uint64) *Replayer {
	if interval == 0 {
		panic("tick interval must be positive")
	}

	return &Replayer{target: target, interval: interval}
}

// WithProgress reports the position in the trace to p.
func (r *Replayer) WithProgress(p Progress) *Replayer {
	r.progress = p
	return r
}

// Events returns the number of events applied.
func (r *Replayer) Events() uint64 { return r.events }

// Dropped returns the number of events dropped for being outside the
// device.
func (r *Replayer) Dropped() uint64 { return r.dropped }

// LastCycle returns the cycle of the last tick.
func (r *Replayer) LastCycle() uint64 { return r.lastTick }

// Stats summarizes a replay.
type Stats struct {
	LastCycle uint64
	Events    uint64
	Dropped   uint64
}

// Stats returns the counters of the replay so far.
func (r *Replayer) Stats() Stats {
	return Stats{LastCycle: r.lastTick, Events: r.events, Dropped: r.dropped}
}

// Apply ticks up to the cycle of the event and then adds its energy.
// Events that address a cell outside the device are dropped.
func (r *Replayer) Apply(e Event) error {
	if e.Cycle < r.lastCycle {
		return fmt.Errorf("%w: cycle %d after %d", ErrOutOfOrder, e.Cycle, r.lastCycle)
	}

	r.lastCycle = e.Cycle

	err := r.tickTo(e.Cycle)
	if err != nil {
		return err
	}

	switch e.Kind {
	case KindIO:
		err = r.target.AddIOPower(e.Energy, e.Vault, e.Bank, e.Row, e.Col, e.Cycle)
	default:
		err = r.target.AddPower(
			e.Energy, e.Vault, e.Bank, e.Row, e.Col, e.Single, e.Cycle)
	}

	if errors.Is(err, geometry.ErrAddressOutOfRange) {
		r.dropped++
		return nil
	}

	if err != nil {
		return err
	}

	r.events++

	return nil
}

// tickTo ticks every boundary in (lastTick, cycle].
func (r *Replayer) tickTo(cycle uint64) error {
	for next := r.lastTick + r.interval; next <= cycle; next += r.interval {
		err := r.target.Tick(next)
		if err != nil {
			return err
		}

		r.lastTick = next
	}

	return nil
}

// Finish ticks to the end of the interval that holds the last event and
// returns that cycle.
func (r *Replayer) Finish() (uint64, error) {
	if r.events == 0 && r.dropped == 0 {
		return r.lastTick, nil
	}

	end := (r.lastCycle/r.interval + 1) * r.interval
	err := r.tickTo(end)

	return r.lastTick, err
}

// Replay applies all the events of a trace and finishes the last interval.
// It returns the cycle of the last tick.
func (r *Replayer) Replay(reader *Reader) (uint64, error) {
	for {
		e, err := reader.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return r.lastTick, err
		}

		err = r.Apply(e)
		if err != nil {
			return r.lastTick, err
		}

		if r.progress != nil {
			r.progress.SetFinished(reader.BytesRead())
		}
	}

	if r.progress != nil {
		r.progress.SetFinished(reader.BytesRead())
	}

	return r.Finish()
}
