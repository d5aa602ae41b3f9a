package engine

// Ticker performs one tick's worth of work. It returns true if it made
// progress (and so should be ticked again as soon as possible).
type Ticker interface {
	Tick() bool
}

// TickScheduler schedules TickEvents for a Ticker at a fixed frequency.
type TickScheduler struct {
	handler Handler
	engine  Engine
	freq    Freq

	nextTickTime VTimeInSec
}

// NewTickScheduler creates a scheduler that drives handler's ticks on
// engine at freq.
func NewTickScheduler(handler Handler, engine Engine, freq Freq) *TickScheduler {
	return &TickScheduler{
		handler:      handler,
		engine:       engine,
		freq:         freq,
		nextTickTime: -1,
	}
}

// TickLater schedules the next tick at the first tick boundary after the
// engine's current time, unless one is already pending.
func (t *TickScheduler) TickLater() {
	now := t.engine.CurrentTime()
	next := t.freq.NextTick(now)

	if t.nextTickTime >= next {
		return
	}

	t.nextTickTime = next
	t.engine.Schedule(NewTickEvent(next, t.handler))
}

// TickingComponent advances a Ticker once per tick, driven by a
// TickScheduler and a discrete-event Engine. This is the shape every
// NetworkSide uses to step its solver forward.
type TickingComponent struct {
	*TickScheduler

	name   string
	ticker Ticker
}

// NewTickingComponent creates a TickingComponent named name that calls
// ticker.Tick() once per tick at freq.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := &TickingComponent{name: name, ticker: ticker}
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)

	return tc
}

// Name returns the component's name.
func (c *TickingComponent) Name() string { return c.name }

// Handle runs the ticker and reschedules if it made progress.
func (c *TickingComponent) Handle(e Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}
