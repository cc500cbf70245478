package trace_test

import (
	"bytes"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/stacktherm/trace"
)

var _ = Describe("Reader", func() {
	It("should read events and skip headers and comments", func() {
		r := trace.NewReader(strings.NewReader(
			"cycle,kind,energy,vault,bank,row,col,single\n" +
				"# warm up\n" +
				"10,core,1e-9,1,2,3,4,1\n" +
				"12, io, 2.5e-10, 0, 0, 0, 0, 0\n"))

		e, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(Equal(trace.Event{
			Cycle: 10, Kind: trace.KindCore, Energy: 1e-9,
			Vault: 1, Bank: 2, Row: 3, Col: 4, Single: true,
		}))

		e, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Kind).To(Equal(trace.KindIO))
		Expect(e.Energy).To(Equal(2.5e-10))
		Expect(e.Single).To(BeFalse())

		_, err = r.Next()
		Expect(err).To(Equal(io.EOF))
		Expect(r.BytesRead()).To(BeNumerically(">", 0))
	})

	DescribeTable("should reject malformed lines",
		func(line string) {
			r := trace.NewReader(strings.NewReader(line))

			_, err := r.Next()

			Expect(err).To(MatchError(trace.ErrMalformedTrace))
		},
		Entry("negative cycle", "-1,core,1,0,0,0,0,1\n"),
		Entry("unknown kind", "1,refresh,1,0,0,0,0,1\n"),
		Entry("bad energy", "1,core,lots,0,0,0,0,1\n"),
		Entry("bad bank", "1,core,1,0,x,0,0,1\n"),
		Entry("bad flag", "1,core,1,0,0,0,0,maybe\n"),
		Entry("missing field", "1,core,1,0,0,0,0\n"),
	)

	It("should read what the writer writes", func() {
		events := []trace.Event{
			{Cycle: 1, Kind: trace.KindCore, Energy: 1.25e-9, Single: true},
			{Cycle: 7, Kind: trace.KindIO, Energy: 3e-12, Vault: 3, Col: 9},
		}

		buf := bytes.NewBuffer(nil)
		w, err := trace.NewWriter(buf)
		Expect(err).NotTo(HaveOccurred())

		for _, e := range events {
			Expect(w.Write(e)).To(Succeed())
		}

		Expect(w.Flush()).To(Succeed())

		r := trace.NewReader(buf)
		for _, e := range events {
			Expect(r.Next()).To(Equal(e))
		}
	})

	It("should name the kinds", func() {
		Expect(trace.KindCore.String()).To(Equal("core"))
		Expect(trace.KindIO.String()).To(Equal("io"))
		Expect(trace.Kind(9).String()).To(Equal("Kind(9)"))
	})
})
