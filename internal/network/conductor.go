package network

// Conductor is a two-port Link stamping a fixed conductance between two
// nodes, grounded on other_examples' RuiCat-circuit StampConductance
// pattern (±G on the diagonal, ∓G off-diagonal) and on GUNNS's
// GunnsFluidConductor role. It exists in this repository so the network
// package's Solver has more than one Link kind to exercise — the device
// physics that would size a real conductance are out of scope per
// spec.md §1.
type Conductor struct {
	LinkBase

	nodes [2]*Node

	// Conductance is the fixed admittance between the two nodes.
	Conductance float64

	flowRate float64
}

// NewConductor creates a Conductor between nodeA and nodeB (indices
// nodeAIndex, nodeBIndex) with the given fixed conductance.
func NewConductor(name string, nodeAIndex int, nodeA *Node, nodeBIndex int, nodeB *Node, conductance float64) *Conductor {
	return &Conductor{
		LinkBase:    NewLinkBase(name, []int{nodeAIndex, nodeBIndex}),
		nodes:       [2]*Node{nodeA, nodeB},
		Conductance: conductance,
	}
}

// StampAdmittance stamps ±Conductance into the link's 2x2 admittance
// block.
func (c *Conductor) StampAdmittance(dt float64) {
	g := c.Conductance
	c.SetAdmittance(0, 0, g)
	c.SetAdmittance(0, 1, -g)
	c.SetAdmittance(1, 0, -g)
	c.SetAdmittance(1, 1, g)
}

// StampSource is a no-op; a plain conductance has no independent source.
func (c *Conductor) StampSource() {}

// ComputeFlows derives the link's molar flow rate from the solved node
// potentials, positive from node A to node B.
func (c *Conductor) ComputeFlows(dt float64) {
	c.flowRate = c.Conductance * (c.nodes[0].Potential() - c.nodes[1].Potential())
}

// FlowRate returns the most recently computed flow rate.
func (c *Conductor) FlowRate() float64 { return c.flowRate }

// TransportFlows moves the computed flow's molar content between the two
// nodes' fluid inflows.
func (c *Conductor) TransportFlows(dt float64) {
	if c.flowRate > 0 {
		c.nodes[0].ScheduleOutflux(c.flowRate)
		c.nodes[1].CollectInflux(c.nodes[0].Content())
	} else if c.flowRate < 0 {
		c.nodes[1].ScheduleOutflux(-c.flowRate)
		c.nodes[0].CollectInflux(c.nodes[1].Content())
	}
}

// ProcessInputs is a no-op; a plain conductance has no external input.
func (c *Conductor) ProcessInputs() error { return nil }

// ProcessOutputs is a no-op; a plain conductance has nothing to publish.
func (c *Conductor) ProcessOutputs() error { return nil }
