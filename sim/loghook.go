package sim

import (
	"fmt"
	"log"
)

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks
type LogHookBase struct {
	*log.Logger
}

// PosLogHook prints one line for every hook invocation at the positions it
// is interested in. An empty position list means all positions.
type PosLogHook struct {
	LogHookBase

	positions []*HookPos
}

// NewPosLogHook creates a PosLogHook that writes to the given logger.
func NewPosLogHook(logger *log.Logger, positions ...*HookPos) *PosLogHook {
	return &PosLogHook{
		LogHookBase: LogHookBase{Logger: logger},
		positions:   positions,
	}
}

// Func logs the position and the detail of the invocation.
func (h *PosLogHook) Func(ctx HookCtx) {
	if !h.interested(ctx.Pos) {
		return
	}

	detail := ""
	if s, ok := ctx.Detail.(fmt.Stringer); ok {
		detail = s.String()
	}

	h.Printf("%s %v %s", ctx.Pos.Name, ctx.Item, detail)
}

func (h *PosLogHook) interested(pos *HookPos) bool {
	if len(h.positions) == 0 {
		return true
	}

	for _, p := range h.positions {
		if p == pos {
			return true
		}
	}

	return false
}
