package network

// CapacitorHandle is the capability handle spec.md §9's Design Notes
// calls for to resolve the cyclic dependency between an interface link
// and the node's capacitor link: "the link holds a non-owning reference
// exposing only editVolume(enable, value) and getVolume(). Ownership
// stays with the network container." The Mode Arbiter holds one of
// these, not a *Capacitor, so it cannot reach into the network beyond
// what this interface permits.
type CapacitorHandle interface {
	EditVolume(enable bool, value float64)
	Volume() float64
}

// Capacitor is a single-port Link that gives its node capacitive volume:
// a backward-Euler admittance of volume·compliance/dt and a source
// term that charges the node at its previous potential, grounded on the
// conductance-stamping pattern other_examples' Capacitor.go uses
// (G_eq = 2C/dt for trapezoidal integration; backward Euler here drops
// the factor of 2) and on GUNNS's GunnsFluidCapacitor role.
type Capacitor struct {
	LinkBase

	node *Node

	// Compliance converts volume to molar capacitance (kmol per kPa per
	// unit volume), standing in for 1/(R·T) of the real ideal-gas
	// relation — fluid property tables are out of scope per spec.md §1.
	Compliance float64

	pendingEdit      bool
	pendingVolume    float64
}

// NewCapacitor creates a Capacitor on node with the given molar
// compliance.
func NewCapacitor(name string, nodeIndex int, node *Node, compliance float64) *Capacitor {
	return &Capacitor{
		LinkBase:   NewLinkBase(name, []int{nodeIndex}),
		node:       node,
		Compliance: compliance,
	}
}

// EditVolume requests the node's volume be set to value on the next
// StampAdmittance. enable=false is accepted for symmetry with the
// GUNNS malfunction-style edit flag; such a call is ignored and leaves
// any earlier pending edit in place.
func (c *Capacitor) EditVolume(enable bool, value float64) {
	if !enable {
		return
	}

	c.pendingEdit = true
	c.pendingVolume = value
}

// Volume returns the node's current volume.
func (c *Capacitor) Volume() float64 { return c.node.Volume() }

// Capacitance returns the molar capacitance the node currently presents,
// volume·Compliance.
func (c *Capacitor) Capacitance() float64 { return c.node.Volume() * c.Compliance }

// StampAdmittance applies any pending volume edit, then stamps the
// backward-Euler capacitive admittance G = C/dt onto the node's diagonal.
func (c *Capacitor) StampAdmittance(dt float64) {
	if c.pendingEdit {
		c.node.SetVolume(c.pendingVolume)
		c.pendingEdit = false
	}

	if dt <= 0 {
		c.SetAdmittance(0, 0, 0)
		return
	}

	c.SetAdmittance(0, 0, c.Capacitance()/dt)
}

// StampSource charges the node at its own previous potential, the
// current-source term of the backward-Euler capacitor model.
func (c *Capacitor) StampSource() {
	c.SetSource(0, c.AdmittanceMatrix()[0]*c.node.Potential())
}

// ComputeFlows is a no-op: a capacitor stores, it does not move flow
// between ports.
func (c *Capacitor) ComputeFlows(dt float64) {}

// TransportFlows is a no-op for the same reason.
func (c *Capacitor) TransportFlows(dt float64) {}

// ProcessInputs is a no-op; a capacitor has no external input to ingest.
func (c *Capacitor) ProcessInputs() error { return nil }

// ProcessOutputs is a no-op; a capacitor has nothing to publish.
func (c *Capacitor) ProcessOutputs() error { return nil }
