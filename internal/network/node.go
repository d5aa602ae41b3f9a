// Package network provides the minimal solver/node/link contract that the
// distributed fluid interface relies on (spec.md §4.5): node potentials,
// network capacitance, flow collection, and admittance stamping. It is
// deliberately generic — it knows nothing about fluids, pumps, or valves;
// those are out-of-scope device models per spec.md §1.
package network

import "github.com/sarchlab/distfluid/internal/fluid"

// Node is a point in the network at which a potential (pressure) is
// solved. It may hold fluid volume and composition. Grounded on GUNNS's
// GunnsBasicNode / GunnsFluidNode: a node is mutated by at most one
// component per phase, and links reach into it through the capability
// handles network.Capacitor exposes rather than by inheriting from it.
type Node struct {
	Index int

	potential float64
	volume    float64
	content   *fluid.State
	inflow    *fluid.State

	networkCapacitance    float64
	netCapDeltaPotential  []float64
	probeFluxRequest      float64

	scheduledOutflux float64
}

// NewNode creates a node at the given index with initial content.
func NewNode(index int, volume float64, content *fluid.State) *Node {
	return &Node{
		Index:   index,
		volume:  volume,
		content: content,
		inflow:  fluid.NewState(content.Config),
	}
}

// Potential returns the node's solved potential (pressure).
func (n *Node) Potential() float64 { return n.potential }

// SetPotential is called by the solver after each solve.
func (n *Node) SetPotential(p float64) { n.potential = p }

// Volume returns the node's current capacitive volume.
func (n *Node) Volume() float64 { return n.volume }

// SetVolume is called by a Capacitor link when StampAdmittance applies a
// volume edit left pending by EditVolume.
func (n *Node) SetVolume(v float64) { n.volume = v }

// Content returns the node's current fluid state.
func (n *Node) Content() *fluid.State { return n.content }

// Inflow returns the fluid state most recently collected from an inbound
// flow, or a zeroed state if nothing has been collected yet. It is not
// cleared between ticks.
func (n *Node) Inflow() *fluid.State { return n.inflow }

// NetworkCapacitance returns the node's network capacitance
// (∂(mole content)/∂(pressure)) as last computed by the solver.
func (n *Node) NetworkCapacitance() float64 { return n.networkCapacitance }

// NetCapDeltaPotential returns the node's network-capacitance
// delta-potential row: NetCapDeltaPotential()[j] is the change in node j's
// potential when this node's requested probe flux is injected here.
func (n *Node) NetCapDeltaPotential() []float64 { return n.netCapDeltaPotential }

// RequestNetworkCapacitance asks the solver to measure this node's network
// capacitance using the given probe flux on the next solve.
func (n *Node) RequestNetworkCapacitance(probeFlux float64) {
	n.probeFluxRequest = probeFlux
}

// ScheduleOutflux records that a link intends to remove flow from this
// node this tick, for the solver's flow bookkeeping.
func (n *Node) ScheduleOutflux(rate float64) {
	n.scheduledOutflux += rate
}

// CollectInflux replaces the node's recorded inflow with an inbound
// flow's fluid state (earlier collections are not merged), for callers (like the Supply Responder) that fall back
// to node contents when the inflow is unusable.
func (n *Node) CollectInflux(state *fluid.State) {
	n.inflow = state
}

// SeedCapacitanceMeasurement sets the node's network capacitance and
// delta-potential row directly, bypassing a Solver pass. Solver.Step is
// the normal way these fields are populated; this exists for restart
// checkpoints and for tests that exercise a single node in isolation.
func (n *Node) SeedCapacitanceMeasurement(capacitance float64, deltaPotentialRow []float64) {
	n.networkCapacitance = capacitance
	n.netCapDeltaPotential = deltaPotentialRow
}

// resetTick clears the per-tick bookkeeping the solver accumulates.
func (n *Node) resetTick() {
	n.scheduledOutflux = 0
	n.probeFluxRequest = 0
}
