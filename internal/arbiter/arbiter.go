// Package arbiter implements the Mode Arbiter (spec.md §4.2): the state
// machine deciding, once per step, whether a distributed interface link
// is Supply or Demand, driven by peer data, relative capacitance, and
// optional force flags.
package arbiter

import (
	"errors"

	"github.com/sarchlab/distfluid/internal/ifdata"
	"github.com/sarchlab/distfluid/internal/network"
)

// Mode is the interface's current role.
type Mode int

const (
	// Supply is the role that advertises a pressure and accepts a molar
	// flow from the peer (GLOSSARY).
	Supply Mode = iota
	// Demand is the role that advertises a desired molar flow and
	// accepts a pressure from the peer (GLOSSARY).
	Demand
)

func (m Mode) String() string {
	if m == Demand {
		return "Demand"
	}

	return "Supply"
}

// Config is the arbiter's construction-time configuration, drawn from
// the options table of spec.md §6.
type Config struct {
	IsPairMaster           bool
	ModingCapacitanceRatio float64 // must be > 1; default 1.25
	ForceDemandMode        bool
	ForceSupplyMode        bool
}

// Arbiter is the Mode Arbiter for one side of one distributed interface
// link. It holds a non-owning CapacitorHandle, per spec.md §9's Design
// Notes on the interface/capacitor cyclic dependency.
type Arbiter struct {
	cfg Config
	cap network.CapacitorHandle

	mode              Mode
	supplyVolume      float64
	framesSinceFlip   int
	prevInboundDemand bool
	zeroSourceOnFlip  bool
}

// New creates an Arbiter starting in Supply mode (spec.md §4.2's "Initial
// state: Supply on both peers"), validated per spec.md §7's
// ConfigurationError conditions.
func New(cfg Config, cap network.CapacitorHandle) (*Arbiter, error) {
	if cfg.ForceDemandMode && cfg.ForceSupplyMode {
		return nil, errors.New("arbiter: configuration error: forceDemandMode and forceSupplyMode both set")
	}

	if cfg.ModingCapacitanceRatio <= 1 {
		return nil, errors.New("arbiter: configuration error: modingCapacitanceRatio must be > 1")
	}

	if cap == nil {
		return nil, errors.New("arbiter: configuration error: missing capacitor handle")
	}

	return &Arbiter{cfg: cfg, cap: cap, mode: Supply}, nil
}

// Mode returns the interface's current role.
func (a *Arbiter) Mode() Mode { return a.mode }

// FramesSinceFlip returns the number of steps since the last mode flip.
func (a *Arbiter) FramesSinceFlip() int { return a.framesSinceFlip }

// SupplyVolume returns the node volume cached while in Demand mode, so it
// can be restored on flipping back (spec.md §3).
func (a *Arbiter) SupplyVolume() float64 { return a.supplyVolume }

// ConsumeZeroSourceOnFlip reports whether the arbiter just flipped to
// Supply this step (in which case outbound Source must be zeroed "to
// prevent the peer reading a stale pressure as a flow demand", spec.md
// §4.2), and clears the flag.
func (a *Arbiter) ConsumeZeroSourceOnFlip() bool {
	v := a.zeroSourceOnFlip
	a.zeroSourceOnFlip = false

	return v
}

// EvaluatePreSolve runs rules 1-3 of spec.md §4.2: force flags first, then
// the handshake and start-up tie-break, evaluated once per step after
// reading the inbound payload and before the solver runs.
func (a *Arbiter) EvaluatePreSolve(inbound *ifdata.Payload, localCapacitance float64) {
	a.framesSinceFlip++

	switch {
	case a.cfg.ForceDemandMode && a.mode == Supply:
		a.flipToDemand()
	case a.cfg.ForceSupplyMode && a.mode == Demand:
		a.flipToSupply()
	case inbound.Valid():
		a.evaluateHandshake(inbound, localCapacitance)
	}

	if inbound.Valid() {
		a.prevInboundDemand = inbound.DemandMode
	}
}

func (a *Arbiter) evaluateHandshake(inbound *ifdata.Payload, localCapacitance float64) {
	switch {
	case a.mode == Demand && inbound.DemandMode && !a.prevInboundDemand:
		a.flipToSupply()
	case a.mode == Supply && !inbound.DemandMode:
		a.evaluateStartupRace(inbound, localCapacitance)
	}
}

// evaluateStartupRace is rule 3's "both sides Supply" branch: the side
// with the smaller advertised capacitance flips to Demand; ties are
// broken by isPairMaster.
func (a *Arbiter) evaluateStartupRace(inbound *ifdata.Payload, localCapacitance float64) {
	switch {
	case localCapacitance < inbound.Capacitance:
		a.flipToDemand()
	case localCapacitance == inbound.Capacitance && a.cfg.IsPairMaster:
		a.flipToDemand()
	}
}

// EvaluatePostSolve runs rule 4 of spec.md §4.2: the capacitance-driven
// flip to Demand, gated on loop latency to avoid oscillation during large
// transients. It is only meaningful while in Supply mode.
func (a *Arbiter) EvaluatePostSolve(localCapacitance, inboundCapacitance float64, loopLatency int) {
	if a.mode != Supply {
		return
	}

	if a.framesSinceFlip > loopLatency &&
		localCapacitance*a.cfg.ModingCapacitanceRatio < inboundCapacitance {
		a.flipToDemand()
	}
}

func (a *Arbiter) flipToDemand() {
	a.supplyVolume = a.cap.Volume()
	a.cap.EditVolume(true, 0)
	a.framesSinceFlip = 0
	a.mode = Demand
}

func (a *Arbiter) flipToSupply() {
	a.cap.EditVolume(true, a.supplyVolume)
	a.supplyVolume = 0
	a.framesSinceFlip = 0
	a.mode = Supply
	a.zeroSourceOnFlip = true
}
