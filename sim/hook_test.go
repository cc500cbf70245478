package sim

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type detail string

func (d detail) String() string { return string(d) }

var _ = Describe("HookableBase", func() {
	var (
		h   *HookableBase
		pos = &HookPos{Name: "Test"}
	)

	BeforeEach(func() {
		h = NewHookableBase()
	})

	It("should invoke hooks in order", func() {
		var got []int
		h.AcceptHook(HookFunc(func(HookCtx) { got = append(got, 1) }))
		h.AcceptHook(HookFunc(func(HookCtx) { got = append(got, 2) }))

		h.InvokeHook(HookCtx{Pos: pos})

		Expect(h.NumHooks()).To(Equal(2))
		Expect(got).To(Equal([]int{1, 2}))
	})

	It("should accept the same func hook twice", func() {
		calls := 0
		f := HookFunc(func(HookCtx) { calls++ })

		Expect(func() {
			h.AcceptHook(f)
			h.AcceptHook(f)
		}).NotTo(Panic())

		h.InvokeHook(HookCtx{Pos: pos})
		Expect(calls).To(Equal(2))
	})

	It("should reject a duplicated hook", func() {
		hook := NewPosLogHook(log.Default())
		h.AcceptHook(hook)

		Expect(func() { h.AcceptHook(hook) }).To(Panic())
	})
})

var _ = Describe("PosLogHook", func() {
	var (
		buf    *bytes.Buffer
		logger *log.Logger
		a      = &HookPos{Name: "A"}
		b      = &HookPos{Name: "B"}
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = log.New(buf, "", 0)
	})

	It("should log every position by default", func() {
		hook := NewPosLogHook(logger)

		hook.Func(HookCtx{Pos: a, Item: 3, Detail: detail("x")})
		hook.Func(HookCtx{Pos: b, Item: 4})

		Expect(buf.String()).To(Equal("A 3 x\nB 4 \n"))
	})

	It("should filter positions", func() {
		hook := NewPosLogHook(logger, b)

		hook.Func(HookCtx{Pos: a, Item: 3})
		hook.Func(HookCtx{Pos: b, Item: 4})

		Expect(buf.String()).To(Equal("B 4 \n"))
	})
})
