package linalg

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gmeasure"
)

func mesh(x, y int) *Sparse {
	b := NewBuilder(x * y)
	for r := 0; r < y; r++ {
		for c := 0; c < x; c++ {
			i := r*x + c
			if c+1 < x {
				b.AddConductance(i, i+1, 1)
			}
			if r+1 < y {
				b.AddConductance(i, i+x, 1)
			}
		}
	}
	b.AddGrounded(0, 1)

	return b.Build()
}

var _ = Describe("Solver", func() {
	DescribeTable("should solve a grounded chain",
		func(method Method) {
			m := chain(50, 0.5)
			opts := DefaultOptions()
			opts.Method = method

			s, err := NewSolver(m, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Method()).To(Equal(method))

			b := make([]float64, 50)
			b[49] = 1

			x, err := s.Solve(b)
			Expect(err).NotTo(HaveOccurred())

			// All the current flows through the 50 series conductances.
			for i := range x {
				Expect(x[i]).To(BeNumerically("~", float64(i+1)*2, 1e-8))
			}
		},
		Entry("dense LU", MethodDenseLU),
		Entry("conjugate gradient", MethodCG),
	)

	It("should pick dense LU for small systems", func() {
		s, err := NewSolver(chain(10, 1), DefaultOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Method()).To(Equal(MethodDenseLU))
	})

	It("should pick CG above the dense limit", func() {
		opts := DefaultOptions()
		opts.DenseLimit = 5

		s, err := NewSolver(chain(10, 1), opts)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Method()).To(Equal(MethodCG))
	})

	It("should return zeros for a zero right-hand side", func() {
		opts := DefaultOptions()
		opts.Method = MethodCG
		s, _ := NewSolver(chain(4, 1), opts)

		x, err := s.Solve(make([]float64, 4))

		Expect(err).NotTo(HaveOccurred())
		Expect(x).To(Equal([]float64{0, 0, 0, 0}))
	})

	It("should detect an all-zero matrix", func() {
		m := NewBuilder(3).Build()

		_, err := NewSolver(m, DefaultOptions())

		Expect(errors.Is(err, ErrSingular)).To(BeTrue())
	})

	It("should detect a floating network with dense LU", func() {
		b := NewBuilder(2)
		b.AddConductance(0, 1, 1)
		opts := DefaultOptions()
		opts.Method = MethodDenseLU

		_, err := NewSolver(b.Build(), opts)

		Expect(errors.Is(err, ErrSingular)).To(BeTrue())
	})

	It("should detect a floating network with CG", func() {
		b := NewBuilder(2)
		b.AddConductance(0, 1, 1)
		opts := DefaultOptions()
		opts.Method = MethodCG

		s, err := NewSolver(b.Build(), opts)
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Solve([]float64{1, 0})
		Expect(errors.Is(err, ErrSingular)).To(BeTrue())
	})

	It("should give up after the iteration budget", func() {
		opts := DefaultOptions()
		opts.Method = MethodCG
		opts.MaxIterations = 1
		s, _ := NewSolver(chain(20, 1), opts)

		b := make([]float64, 20)
		b[19] = 1
		_, err := s.Solve(b)

		Expect(errors.Is(err, ErrNotConverged)).To(BeTrue())
	})

	It("measure solving speed", func() {
		experiment := gmeasure.NewExperiment("Conductance Solve Speed")
		AddReportEntry(experiment.Name, experiment)

		m := mesh(32, 32)
		b := make([]float64, m.N())
		b[m.N()-1] = 1

		for _, method := range []Method{MethodDenseLU, MethodCG} {
			opts := DefaultOptions()
			opts.Method = method

			experiment.MeasureDuration(method.String(), func() {
				s, err := NewSolver(m, opts)
				Expect(err).NotTo(HaveOccurred())

				_, err = s.Solve(b)
				Expect(err).NotTo(HaveOccurred())
			})
		}
	})
})
