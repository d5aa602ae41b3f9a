package transport

import (
	"math/rand"

	"github.com/sarchlab/distfluid/internal/engine"
)

// Connection moves messages sent on one plugged-in Port to their
// destination Port. It is the only thing that crosses the
// process/goroutine boundary between two NetworkSides.
type Connection interface {
	PlugIn(port *Port)
	NotifySend()
}

// LatencyConnection delivers every message after a fixed number of ticks,
// and may drop messages entirely, modelling "possibly across a latent
// transport" (spec.md §1) and the peer-silence scenario of spec.md §8.6.
// Grounded on the teacher's (commented-out) FixedLatencyConnection and on
// sim.directconnection's port-forwarding tick loop.
type LatencyConnection struct {
	name   string
	engine engine.Engine
	freq   engine.Freq
	ticks  int // latency, in ticks, before a sent message is delivered

	// DropRate is the probability, in [0,1], that a given message is
	// dropped in transit rather than delivered. Zero by default.
	DropRate float64
	rng      *rand.Rand

	ports map[RemotePort]*Port
}

// NewLatencyConnection creates a connection named name that delivers
// messages latencyTicks ticks (at freq) after they are sent.
func NewLatencyConnection(
	name string,
	eng engine.Engine,
	freq engine.Freq,
	latencyTicks int,
) *LatencyConnection {
	return &LatencyConnection{
		name:   name,
		engine: eng,
		freq:   freq,
		ticks:  latencyTicks,
		rng:    rand.New(rand.NewSource(1)), //nolint:gosec // deterministic sim
		ports:  make(map[RemotePort]*Port),
	}
}

// PlugIn attaches port to the connection.
func (c *LatencyConnection) PlugIn(port *Port) {
	c.ports[port.AsRemote()] = port
	port.SetConnection(c)
}

// NotifySend drains every plugged-in port's outgoing buffer, scheduling a
// deliverEvent for each message latencyTicks ticks in the future.
func (c *LatencyConnection) NotifySend() {
	now := c.engine.CurrentTime()

	for _, port := range c.ports {
		for {
			msg := port.RetrieveOutgoing()
			if msg == nil {
				break
			}

			if c.DropRate > 0 && c.rng.Float64() < c.DropRate {
				continue
			}

			deliverAt := now
			for i := 0; i < c.ticks; i++ {
				deliverAt = c.freq.NextTick(deliverAt)
			}

			c.engine.Schedule(newDeliverEvent(deliverAt, c, msg))
		}
	}
}

// Handle runs a deliverEvent, handing the message to its destination
// port.
func (c *LatencyConnection) Handle(e engine.Event) error {
	evt, ok := e.(deliverEvent)
	if !ok {
		return nil
	}

	dst, found := c.ports[evt.msg.Meta().Dst]
	if !found {
		return nil
	}

	dst.Deliver(evt.msg)

	return nil
}

type deliverEvent struct {
	*engine.EventBase
	msg Msg
}

func newDeliverEvent(t engine.VTimeInSec, handler engine.Handler, msg Msg) deliverEvent {
	return deliverEvent{EventBase: engine.NewEventBase(t, handler), msg: msg}
}
