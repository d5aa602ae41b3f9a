package network

import "fmt"

// ProbeFlux is the process-wide probe-flux constant spec.md §9's Design
// Notes calls for: "the only process-wide value is the probe-flux
// constant 1e-6. Keep it as a module-level constant with a rationale
// comment; do not hide it behind configuration." It is small enough to
// leave the linear system's operating point undisturbed while still
// producing a numerically resolvable pressure response for the
// capacitance-sensitivity measurement of spec.md §4.4 step 5.
const ProbeFlux = 1e-6

// Network is the node/link container a Solver steps. Nodes and links are
// owned here, never by the links that reference them — the capability
// handles of spec.md §9 exist precisely so a link can affect a node's
// volume without holding an owning pointer to it.
type Network struct {
	Nodes       []*Node
	Links       []Link
	GroundIndex int
}

// NewNetwork creates an empty Network whose node at groundIndex (once
// added) is held fixed at zero potential, the conventional MNA ground
// reference.
func NewNetwork(groundIndex int) *Network {
	return &Network{GroundIndex: groundIndex}
}

// AddNode appends node to the network.
func (n *Network) AddNode(node *Node) { n.Nodes = append(n.Nodes, node) }

// AddLink appends link to the network.
func (n *Network) AddLink(link Link) { n.Links = append(n.Links, link) }

// Solver runs one network's linear-system solve per step, per spec.md
// §4.5's solver contract: it produces node.potential,
// node.networkCapacitance, and node.networkCapacitanceDeltaPotential[j]
// for all nodes j, and consumes each link's admittance/source stamps and
// flow-direction metadata.
type Solver struct {
	net *Network
}

// NewSolver creates a Solver over net.
func NewSolver(net *Network) *Solver {
	return &Solver{net: net}
}

// Step runs one full solve cycle: process inputs, stamp, solve, measure
// capacitance sensitivities for any node that requested one, compute and
// transport flows, then process outputs. It mirrors the per-step data
// flow of spec.md §2.
func (s *Solver) Step(dt float64) error {
	for _, l := range s.net.Links {
		if err := l.ProcessInputs(); err != nil {
			return fmt.Errorf("network: link %q ProcessInputs: %w", l.Name(), err)
		}
	}

	for _, l := range s.net.Links {
		l.StampAdmittance(dt)
	}

	for _, l := range s.net.Links {
		l.StampSource()
	}

	potentials, err := s.solve(nil, 0)
	if err != nil {
		return fmt.Errorf("network: solve: %w", err)
	}

	for i, node := range s.net.Nodes {
		if i == s.net.GroundIndex {
			node.SetPotential(0)
			continue
		}

		node.SetPotential(potentials[i])
	}

	s.measureCapacitances(dt, potentials)

	for _, l := range s.net.Links {
		l.ComputeFlows(dt)
	}

	for _, l := range s.net.Links {
		l.TransportFlows(dt)
	}

	for _, l := range s.net.Links {
		if err := l.ProcessOutputs(); err != nil {
			return fmt.Errorf("network: link %q ProcessOutputs: %w", l.Name(), err)
		}
	}

	for _, node := range s.net.Nodes {
		node.resetTick()
	}

	return nil
}

// measureCapacitances implements spec.md §4.4 step 5 and the GLOSSARY's
// "network capacitance at a node": for every node that asked for one
// (RequestNetworkCapacitance), re-solve with an extra probe flux injected
// at that node and record the resulting pressure response at every node.
// The self-response converts to a capacitance estimate; the full row is
// kept so §4.4 step 1's cross-node sensitivity subtraction can use it
// without the solver duplicating that logic.
func (s *Solver) measureCapacitances(dt float64, baseline []float64) {
	for i, node := range s.net.Nodes {
		if node.probeFluxRequest <= 0 {
			continue
		}

		perturbed, err := s.solve(map[int]float64{i: node.probeFluxRequest}, 0)
		if err != nil {
			continue
		}

		row := make([]float64, len(s.net.Nodes))
		for j := range s.net.Nodes {
			row[j] = perturbed[j] - baseline[j]
		}

		node.netCapDeltaPotential = row

		dpSelf := row[i]
		if dpSelf <= 0 {
			node.networkCapacitance = 0
			continue
		}

		node.networkCapacitance = node.probeFluxRequest * dt / dpSelf
	}
}

// solve assembles the global admittance matrix and source vector from
// every link's stamps, optionally adding an extra probe current at
// probeNode, and solves by Gauss-Jordan elimination over every
// non-ground node. unused is reserved for future use and currently
// always 0.
func (s *Solver) solve(probe map[int]float64, unused int) ([]float64, error) {
	n := len(s.net.Nodes)
	solveIndex := make([]int, n)
	m := 0
	for i := range s.net.Nodes {
		if i == s.net.GroundIndex {
			solveIndex[i] = -1
			continue
		}

		solveIndex[i] = m
		m++
	}

	a := make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, m)
	}
	b := make([]float64, m)

	for _, link := range s.net.Links {
		nodeMap := link.NodeMap()
		adm := link.AdmittanceMatrix()
		src := link.SourceVector()
		np := len(nodeMap)

		for p := 0; p < np; p++ {
			si := solveIndex[nodeMap[p]]
			if si < 0 {
				continue
			}

			b[si] += src[p]

			for q := 0; q < np; q++ {
				sj := solveIndex[nodeMap[q]]
				if sj < 0 {
					continue
				}

				a[si][sj] += adm[p*np+q]
			}
		}
	}

	for nodeIdx, flux := range probe {
		si := solveIndex[nodeIdx]
		if si < 0 {
			continue
		}

		b[si] += flux
	}

	x, err := gaussJordan(a, b)
	if err != nil {
		return nil, err
	}

	potentials := make([]float64, n)
	for i := range s.net.Nodes {
		if solveIndex[i] < 0 {
			continue
		}

		potentials[i] = x[solveIndex[i]]
	}

	return potentials, nil
}

// gaussJordan solves a·x = b for x by Gauss-Jordan elimination with
// partial pivoting. a is square and consumed (mutated) by the call.
func gaussJordan(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	if n == 0 {
		return nil, nil
	}

	for col := 0; col < n; col++ {
		pivot := col
		best := abs(a[col][col])
		for row := col + 1; row < n; row++ {
			if v := abs(a[row][col]); v > best {
				best = v
				pivot = row
			}
		}

		if best < 1e-12 {
			return nil, fmt.Errorf("network: singular system at column %d", col)
		}

		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}

		pv := a[col][col]
		for j := col; j < n; j++ {
			a[col][j] /= pv
		}
		b[col] /= pv

		for row := 0; row < n; row++ {
			if row == col {
				continue
			}

			factor := a[row][col]
			if factor == 0 {
				continue
			}

			for j := col; j < n; j++ {
				a[row][j] -= factor * a[col][j]
			}
			b[row] -= factor * b[col]
		}
	}

	return b, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
