package simside

import (
	"log"
	"os"

	"github.com/sarchlab/distfluid/internal/engine"
	"github.com/sarchlab/distfluid/internal/recorder"
)

// LogHook is an engine.Hook that records tick-by-tick mode and frame
// activity to the standard log package, grounded on the teacher's
// util.LogHookBase: a hook is just a *log.Logger with a Func method, no
// structured-logging dependency pulled in for what is, on a Side, a
// handful of lines per tick.
type LogHook struct {
	*log.Logger
}

// NewLogHook creates a LogHook writing to os.Stderr with the given
// prefix.
func NewLogHook(prefix string) *LogHook {
	return &LogHook{Logger: log.New(os.Stderr, prefix, log.LstdFlags)}
}

// Func implements engine.Hook.
func (h *LogHook) Func(ctx engine.HookCtx) {
	if ctx.Pos != engine.HookPosTick {
		return
	}

	f, ok := ctx.Item.(recorder.Frame)
	if !ok {
		return
	}

	h.Printf("%s frame=%d demand=%v capacitance=%.6g source=%.6g pressure=%.6g",
		f.LinkName, f.FrameCount, f.DemandMode, f.Capacitance, f.Source, f.Pressure)
}
