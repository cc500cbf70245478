package sim

import "fmt"

// SolverState is the life-cycle stage of a field solver. A solver starts
// Uninitialized, becomes MatrixBuilt once its matrix is assembled, and then
// enters SteadyStateReady or TransientRunning depending on which kind of
// solve it last ran.
type SolverState int

// Solver states.
const (
	Uninitialized SolverState = iota
	MatrixBuilt
	SteadyStateReady
	TransientRunning
)

func (s SolverState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case MatrixBuilt:
		return "matrix-built"
	case SteadyStateReady:
		return "steady-state-ready"
	case TransientRunning:
		return "transient-running"
	default:
		return fmt.Sprintf("SolverState(%d)", int(s))
	}
}
