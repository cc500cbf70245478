package power

import "fmt"

// EpochEvent describes a completed sampling epoch.
type EpochEvent struct {
	Index uint64
	Start uint64
	End   uint64
}

func (e EpochEvent) String() string {
	return fmt.Sprintf("epoch %d [%d, %d)", e.Index, e.Start, e.End)
}

// Length returns the number of cycles in the epoch.
func (e EpochEvent) Length() uint64 {
	return e.End - e.Start
}

// An EpochCounter tells when a sampling epoch ends.
type EpochCounter struct {
	length  uint64
	index   uint64
	lastEnd uint64
}

// NewEpochCounter creates an EpochCounter that fires every length cycles.
func NewEpochCounter(length uint64) *EpochCounter {
	if length == 0 {
		panic("power epoch must be positive")
	}

	return &EpochCounter{length: length}
}

// Length returns the number of cycles per epoch.
func (c *EpochCounter) Length() uint64 {
	return c.length
}

// Tick reports an event if the cycle closes an epoch, that is, if it is a
// multiple of the epoch length. Cycle 0 is the exception: it never closes an
// epoch, since the epoch would have no length to convert energy into power.
// A cycle that has already closed an epoch does not close it again.
func (c *EpochCounter) Tick(cycle uint64) (EpochEvent, bool) {
	if cycle == 0 || cycle%c.length != 0 || cycle <= c.lastEnd {
		return EpochEvent{}, false
	}

	e := EpochEvent{Index: c.index, Start: c.lastEnd, End: cycle}
	c.index++
	c.lastEnd = cycle

	return e, true
}

// Reset starts counting from cycle 0 again.
func (c *EpochCounter) Reset() {
	c.index = 0
	c.lastEnd = 0
}
