package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = DescribeTable("SolverState",
	func(s SolverState, name string) {
		Expect(s.String()).To(Equal(name))
	},
	Entry("uninitialized", Uninitialized, "uninitialized"),
	Entry("matrix built", MatrixBuilt, "matrix-built"),
	Entry("steady state", SteadyStateReady, "steady-state-ready"),
	Entry("transient", TransientRunning, "transient-running"),
	Entry("unknown", SolverState(7), "SolverState(7)"),
)
