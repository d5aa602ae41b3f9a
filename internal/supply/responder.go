// Package supply implements the Supply Responder (spec.md §4.4): while a
// distributed interface link is in Supply mode, it publishes the local
// node's advertised capacitance (less other demanders' effective
// contribution), publishes local node state, and converts the peer's
// molar demand into a flow source stamped into the local linear system.
package supply

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/distfluid/internal/fluid"
	"github.com/sarchlab/distfluid/internal/ifdata"
	"github.com/sarchlab/distfluid/internal/network"
)

const epsilon = 1e-12

// Sibling is one other demand-interface link sharing this side's network,
// whose effective capacitance contribution at our node must be
// subtracted from what we advertise (spec.md §4.4 step 1). The caller
// that registers it (distif.Link) creates and updates the Sibling; a
// Responder only reads it.
type Sibling struct {
	Name string

	// NodeIndex is the network node index this sibling's interface is
	// attached to.
	NodeIndex int

	// Capacitance is this sibling's own suppliedCapacitance, updated by
	// the caller (the owning distributed-interface package) once per
	// step before PublishCapacitance is called.
	Capacitance float64
}

// Config is the responder's construction-time configuration.
type Config struct {
	// MolarUnitScale converts the wire unit of spec.md §6 (mol/s) to the
	// solver's molar unit (spec.md §9's Open Question on the Pa/kPa,
	// mol/kmol split preserved only at the interface).
	MolarUnitScale float64
}

// Responder is the Supply Responder for one side of one distributed
// interface link.
type Responder struct {
	name string
	node *network.Node
	cfg  Config

	siblings []*Sibling

	// SuppliedCapacitance is this link's own residual contribution to the
	// node's capacitance, guarding the "rarely" case of spec.md §4.4 step
	// 1 where a link still injects some in Demand mode during a mode-flip
	// transient.
	SuppliedCapacitance float64
}

// New creates a Responder for node, named name.
func New(name string, node *network.Node, cfg Config) *Responder {
	return &Responder{name: name, node: node, cfg: cfg}
}

// AddSibling registers another demand-interface link's effective
// capacitance view. It rejects self-insertion and deduplicates on Name,
// per spec.md §9's Design Notes on the "other interface" siblings list.
func (r *Responder) AddSibling(s *Sibling) error {
	if s.Name == r.name {
		return errors.New("supply: a responder cannot be its own sibling")
	}

	for _, existing := range r.siblings {
		if existing.Name == s.Name {
			return nil
		}
	}

	r.siblings = append(r.siblings, s)

	return nil
}

// RequestCapacitanceMeasurement asks the solver to measure this node's
// network capacitance on its next solve, using the process-wide probe
// flux constant (spec.md §4.4 step 5, §9).
func (r *Responder) RequestCapacitanceMeasurement() {
	r.node.RequestNetworkCapacitance(network.ProbeFlux)
}

// PublishCapacitance implements spec.md §4.4 step 1: the node's network
// capacitance, minus this link's own residual contribution, minus every
// sibling demand-interface's effective capacitance at our node, floored
// at zero (P5).
func (r *Responder) PublishCapacitance() float64 {
	total := r.node.NetworkCapacitance() - r.SuppliedCapacitance

	row := r.node.NetCapDeltaPotential()
	if len(row) > r.node.Index {
		dpSelf := row[r.node.Index]
		if dpSelf < epsilon {
			dpSelf = epsilon
		}

		for _, sib := range r.siblings {
			if sib.NodeIndex >= len(row) {
				continue
			}

			dpJ := row[sib.NodeIndex]
			total -= sib.Capacitance * dpJ / dpSelf
		}
	}

	return math.Max(total, 0)
}

// PublishPressure returns the node's pressure for the outbound Source
// field, converted to the wire's pascal unit.
func (r *Responder) PublishPressure(pascalsPerSolverUnit float64) float64 {
	return r.node.Potential() * pascalsPerSolverUnit
}

// PublishMixture implements spec.md §4.4 step 3: bulk and trace mole
// fractions from the node's contents, renormalized together so they sum
// to 1 on the wire (spec.md §3's invariant). The bulk fractions round-trip
// through mass-fraction space first, mirroring
// GunnsFluidDistributedIf::outputFluid's getMassFraction /
// convertMassFractionToMoleFraction read-back of the node's fluid object.
// moleFractionSum is the pre-normalization sum outputFluid() itself
// returns (">= 1" when species were truncated at interface construction);
// a Demand-mode caller scales its outbound flux by it, per
// processOutputsDemand's `mFlux * UNIT_PER_KILO * outputFluid(useFluid)`.
func (r *Responder) PublishMixture() (bulk, trace []float64, energy, moleFractionSum float64) {
	content := r.node.Content()

	mass := fluid.MoleToMassFractions(content.Config, content.BulkMoleFractions)
	bulk = fluid.MassToMoleFractions(content.Config, mass)
	trace = append([]float64(nil), content.TraceMoleFractions...)

	sum := 0.0
	for _, f := range bulk {
		sum += f
	}
	for _, f := range trace {
		sum += f
	}

	if sum > epsilon {
		for i := range bulk {
			bulk[i] /= sum
		}
		for i := range trace {
			trace[i] /= sum
		}
	}

	return bulk, trace, content.Energy(), sum
}

// StampDemandOutflow implements spec.md §4.4 step 4: when inbound is
// valid and the peer is in Demand, returns the source-vector entry to
// stamp for the molar outflow the peer is requesting, direction-flipped
// per the Demand side's sign convention (positive inbound.Source means
// flow into the Demand side, hence a negative source at our own node).
func (r *Responder) StampDemandOutflow(inbound *ifdata.Payload) (float64, error) {
	if !inbound.Valid() || !inbound.DemandMode {
		return 0, nil
	}

	bulkIn := make([]float64, r.node.Content().Config.NumBulk())
	inbound.GetBulk(bulkIn)

	sIn := 0.0
	for _, f := range bulkIn {
		sIn += f
	}

	if sIn < epsilon {
		return 0, fmt.Errorf("supply: %w", errInvalidInboundMixture)
	}

	return -inbound.Source * r.cfg.MolarUnitScale * sIn, nil
}

// errInvalidInboundMixture is returned by StampDemandOutflow when the
// inbound bulk mixture fractions sum to (near) zero, so no demand outflow
// can be stamped for the tick.
var errInvalidInboundMixture = errors.New("inbound bulk mixture sums to zero")

// IngestInflow implements the "transient data mismatch" recovery of
// spec.md §7 item 3: if the inbound mixture used to compute the inflow
// composition has negative fractions, fall back to the node's own
// contents instead and report that a fallback occurred.
func IngestInflow(node *network.Node, inboundBulk []float64) (fellBack bool) {
	for _, f := range inboundBulk {
		if f < 0 {
			node.CollectInflux(node.Content())
			return true
		}
	}

	state := node.Content().Clone()
	copy(state.BulkMoleFractions, inboundBulk)
	node.CollectInflux(state)

	return false
}
