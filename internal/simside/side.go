// Package simside assembles one side of a two-network simulation — a
// fluid network, its distributed interface link, and the transport port
// it publishes through — into the engine.Ticker shape a TickingComponent
// drives once per step. It is the runnable demo's wiring layer, grounded
// on the teacher's acceptance-test main()s: a handful of components built
// up by hand and handed to a SerialEngine, no builder framework.
package simside

import (
	"fmt"

	"github.com/sarchlab/distfluid/internal/distif"
	"github.com/sarchlab/distfluid/internal/engine"
	"github.com/sarchlab/distfluid/internal/fluid"
	"github.com/sarchlab/distfluid/internal/network"
	"github.com/sarchlab/distfluid/internal/recorder"
	"github.com/sarchlab/distfluid/internal/transport"
)

// Config describes one side of a simulated pair.
type Config struct {
	Name         string
	PeerName     string
	Volume       float64
	Pressure     float64
	Temperature  float64
	FluidConfig  *fluid.Config
	BulkMoleFrac []float64
	Compliance   float64
	LinkConfig   distif.ConfigData
	DT           float64
	MaxTicks     uint64
}

// Side is one network plus the distributed interface link publishing its
// boundary state, ready to be driven by an engine.TickScheduler. It is
// Hookable: a recorder.Recorder or any other engine.Hook can observe every
// tick without Side knowing it exists, matching the teacher's monitors and
// recorders built as Hooks so the simulated core never imports them.
type Side struct {
	engine.HookableBase

	cfg Config

	net    *network.Network
	node   *network.Node
	cap    *network.Capacitor
	solver *network.Solver
	link   *distif.Link
	port   *transport.Port

	ticks uint64
}

// New builds a Side from cfg. The ground node is index 0; the capacitive
// node is index 1.
func New(cfg Config) (*Side, error) {
	net := network.NewNetwork(0)

	ground := network.NewNode(0, 0, fluid.NewState(cfg.FluidConfig))
	node := network.NewNode(1, cfg.Volume, fluid.NewState(cfg.FluidConfig))
	node.SetPotential(cfg.Pressure)
	node.Content().Temperature = cfg.Temperature

	if len(cfg.BulkMoleFrac) == node.Content().Config.NumBulk() {
		copy(node.Content().BulkMoleFractions, cfg.BulkMoleFrac)
	}

	net.AddNode(ground)
	net.AddNode(node)

	cap := network.NewCapacitor(cfg.Name+".cap", 1, node, cfg.Compliance)
	net.AddLink(cap)

	port := transport.NewPort(cfg.Name, 8, 8)

	link, err := distif.New(cfg.Name+".if", 1, 0, node, cap, port, transport.RemotePort(cfg.PeerName), cfg.LinkConfig)
	if err != nil {
		return nil, fmt.Errorf("simside: build %s: %w", cfg.Name, err)
	}

	net.AddLink(link)

	return &Side{
		cfg:    cfg,
		net:    net,
		node:   node,
		cap:    cap,
		solver: network.NewSolver(net),
		link:   link,
		port:   port,
	}, nil
}

// Name identifies the side, satisfying monitoring.Named.
func (s *Side) Name() string { return s.cfg.Name }

// Port returns the side's transport port, for plugging into a Connection.
func (s *Side) Port() *transport.Port { return s.port }

// Link returns the side's distributed interface link.
func (s *Side) Link() *distif.Link { return s.link }

// Snapshot delegates to the side's link, satisfying
// monitoring.Snapshotter so GET /api/component/{name} can report more
// than just the side's name.
func (s *Side) Snapshot() (frameCount uint64, demandMode bool, capacitance, source, energy, pressure float64) {
	return s.link.Snapshot()
}

// Tick implements engine.Ticker: it steps the solver once and invokes
// every registered hook with the link's new state. It returns false once
// cfg.MaxTicks has been reached (0 means unbounded), which stops the
// owning TickScheduler from rescheduling.
func (s *Side) Tick() bool {
	if err := s.solver.Step(s.cfg.DT); err != nil {
		fmt.Printf("simside: %s: %v\n", s.cfg.Name, err)
		return false
	}

	s.ticks++

	if s.NumHooks() > 0 {
		frameCount, demandMode, capacitance, source, energy, pressure := s.link.Snapshot()
		s.InvokeHook(engine.HookCtx{
			Domain: s,
			Pos:    engine.HookPosTick,
			Item: recorder.Frame{
				LinkName:    s.cfg.Name,
				FrameCount:  frameCount,
				TimeSeconds: float64(s.ticks) * s.cfg.DT,
				DemandMode:  demandMode,
				Capacitance: capacitance,
				Source:      source,
				Energy:      energy,
				Pressure:    pressure,
			},
		})
	}

	if s.cfg.MaxTicks > 0 && s.ticks >= s.cfg.MaxTicks {
		return false
	}

	return true
}
