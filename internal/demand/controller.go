// Package demand implements the Demand Controller (spec.md §4.3): when a
// distributed interface link is in Demand mode, it translates the peer's
// advertised capacitance and pressure into a conductance and a pressure
// source stamped into the local linear system, with a lag-aware gain
// filter for stability.
package demand

import (
	"errors"
	"math"

	"github.com/sarchlab/distfluid/internal/fluid"
	"github.com/sarchlab/distfluid/internal/ifdata"
)

// epsilon floors the denominator of the damped conductance and is the
// threshold below which an inbound bulk fraction sum counts as zero.
const epsilon = 1e-12

// ErrInvalidInterfaceData is spec.md §7's InvalidInterfaceData: the
// inbound bulk mole fractions sum to zero while in Demand mode.
var ErrInvalidInterfaceData = errors.New("demand: invalid interface data: inbound bulk fractions sum to zero")

// Config is the controller's construction-time configuration, drawn from
// the options table of spec.md §6.
type Config struct {
	DemandFilterConstA     float64 // A, default 1.5
	DemandFilterConstB     float64 // B, default 0.75
	ModingCapacitanceRatio float64 // shared hysteresis band, must be > 1
	DemandOption           bool    // true removes the one-step damping resistor
	UseEnthalpy            bool

	// BlockageFraction scales G by (1 - BlockageFraction); zero by
	// default (no malfunction active).
	BlockageFraction float64

	// PascalsPerKpa converts the wire's pascal-denominated source pressure
	// (spec.md §9's Open Question on the Pa/kPa split) back into the
	// solver's kPa unit before it is used as a local pressure or stamped
	// as an admittance source. Must be > 0; defaults to 1000 via
	// distif.DefaultConfig.
	PascalsPerKpa float64
}

// Controller is the Demand Controller for one side of one distributed
// interface link.
type Controller struct {
	cfg Config

	// SuppliedCapacitance is the capacitance this link is consuming from
	// its local node, reported back to the Supply Responder each step so
	// its own outbound capacitance can exclude this effect (spec.md
	// §4.3's closing paragraph).
	SuppliedCapacitance float64

	// SourcePressure is the pressure value stamped as the source term
	// this step, exposed for introspection and testing.
	SourcePressure float64

	// Conductance is the admittance diagonal entry G stamped this step.
	Conductance float64
}

// New creates a Controller.
func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// Gain computes the lag-aware gain law of spec.md §4.3, given the peer's
// capacitance Cs, the local node's capacitance Cd, and the measured loop
// latency in ticks.
func (c *Controller) Gain(cs, cd float64, loopLatency int) float64 {
	r := clamp(1, divide(cs, cd), c.cfg.ModingCapacitanceRatio)
	n := clampInt(1, loopLatency, 100)

	gLimit := math.Min(1, c.cfg.DemandFilterConstA*math.Pow(c.cfg.DemandFilterConstB, float64(n)))

	return gLimit + (1-gLimit)*(r-1)*4
}

// computeConductance computes G per spec.md §4.3's baseG/G relation.
func (c *Controller) computeConductance(cs, cd, dt float64, loopLatency int) float64 {
	gain := c.Gain(cs, cd, loopLatency)
	baseG := gain * cs / dt

	var g float64
	if c.cfg.DemandOption {
		g = baseG
	} else {
		g = 1 / math.Max(1/baseG+dt/cd, epsilon)
	}

	if c.cfg.BlockageFraction > 0 {
		g *= 1 - c.cfg.BlockageFraction
	}

	return g
}

// Step runs one tick of the Demand Controller. nodePressure is the local
// node's current potential (used to hold pressure steady while the
// inbound payload is not yet valid, per spec.md §4.3's failure-handling
// note); localCapacitance is the local node's capacitance Cd; dt is the
// solver step; loopLatency is outbound.frameCount - inbound.frameLoopback.
//
// It returns the admittance diagonal entry and source-vector entry to
// stamp into the local linear system.
func (c *Controller) Step(
	inbound *ifdata.Payload,
	nodePressure float64,
	localCapacitance float64,
	dt float64,
	loopLatency int,
) (admittance, source float64, err error) {
	if !inbound.Valid() {
		c.SourcePressure = nodePressure
		c.Conductance = 0
		c.SuppliedCapacitance = 0

		return 0, 0, nil
	}

	cs := inbound.Capacitance
	cd := localCapacitance

	g := c.computeConductance(cs, cd, dt, loopLatency)
	sourcePressure := inbound.Source / c.pascalsPerKpa()

	c.Conductance = g
	c.SourcePressure = sourcePressure
	c.SuppliedCapacitance = g * dt

	return g, g * sourcePressure, nil
}

// pascalsPerKpa returns cfg.PascalsPerKpa, falling back to 1 (no-op
// conversion) if it was left unset.
func (c *Controller) pascalsPerKpa() float64 {
	if c.cfg.PascalsPerKpa <= 0 {
		return 1
	}

	return c.cfg.PascalsPerKpa
}

// IngestComposition applies spec.md §4.3's composition-handling rule: the
// peer's mole fractions overwrite the local node's contents, renormalized
// so the bulk subset sums to 1, converted to mass fractions and back per
// GunnsFluidDistributedIf::inputFluid's setMassAndMassFractions step, with
// trace compounds divided by the same sum to remain fractions of the bulk
// phase (trace compounds never go through the mass-fraction conversion,
// matching the original's separate tc->setMoleFractions call). When the
// link is configured for enthalpy transport, the inbound energy value is
// also decoded into node.Temperature via fluid.TemperatureFromEnthalpy,
// matching GunnsFluidDistributedIf::inputFluid's
// fluid->setTemperature(fluid->computeTemperature(...)) step.
func (c *Controller) IngestComposition(inbound *ifdata.Payload, node *fluid.State) error {
	bulk := make([]float64, node.Config.NumBulk())
	inbound.GetBulk(bulk)

	s := 0.0
	for _, f := range bulk {
		s += f
	}

	if s < epsilon {
		return ErrInvalidInterfaceData
	}

	fluid.Renormalize(bulk, s)

	mass := fluid.MoleToMassFractions(node.Config, bulk)
	copy(node.BulkMoleFractions, fluid.MassToMoleFractions(node.Config, mass))

	trace := make([]float64, node.Config.NumTrace())
	inbound.GetTrace(trace)
	for i := range trace {
		trace[i] /= s
	}
	copy(node.TraceMoleFractions, trace)

	node.Pressure = inbound.Source / c.pascalsPerKpa()
	node.UseEnthalpy = c.cfg.UseEnthalpy

	if c.cfg.UseEnthalpy {
		node.SpecificEnthalpy = inbound.Energy
		node.Temperature = fluid.TemperatureFromEnthalpy(node.Config, node.BulkMoleFractions, inbound.Energy)
	} else {
		node.Temperature = inbound.Energy
	}

	return nil
}

func clamp(lo, v, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func clampInt(lo, v, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func divide(a, b float64) float64 {
	if b <= 0 {
		return a
	}

	return a / b
}
