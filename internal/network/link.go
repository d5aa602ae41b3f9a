package network

// Link is the capability set spec.md §9's Design Notes calls for so the
// solver can treat a distributed-interface link alongside conductors,
// sources, and capacitors without an inheritance hierarchy:
// "{stampAdmittance(dt), stampSource(), computeFlows(dt),
// transportFlows(dt), processInputs(), processOutputs()}".
type Link interface {
	// Name identifies the link for logging and lookup.
	Name() string

	// NodeMap returns, for each of the link's ports, the index of the
	// Node it is connected to within the owning Network.
	NodeMap() []int

	// AdmittanceMatrix returns the link's contribution to the global
	// admittance matrix, as a row-major len(NodeMap())^2 slice, valid
	// after StampAdmittance.
	AdmittanceMatrix() []float64

	// SourceVector returns the link's contribution to the global source
	// vector, one entry per port, valid after StampSource.
	SourceVector() []float64

	// StampAdmittance computes the link's admittance contribution for a
	// solver step of duration dt.
	StampAdmittance(dt float64)

	// StampSource computes the link's source-vector contribution. It
	// runs after StampAdmittance, once node potentials from the previous
	// step are available.
	StampSource()

	// ComputeFlows derives the link's molar/volumetric flow rate from
	// the just-solved node potentials.
	ComputeFlows(dt float64)

	// TransportFlows moves fluid between the link's nodes (or to/from the
	// outside world, for a boundary link) according to the flows
	// ComputeFlows derived.
	TransportFlows(dt float64)

	// ProcessInputs runs once per step before StampAdmittance, letting a
	// link ingest external state (an inbound payload, a commanded
	// position) before it affects the linear system.
	ProcessInputs() error

	// ProcessOutputs runs once per step after TransportFlows, letting a
	// link publish state derived from the solved network.
	ProcessOutputs() error
}

// LinkBase holds the admittance/source storage common to every Link
// implementation, grounded on GUNNS's GunnsBasicLink mAdmittanceMatrix /
// mSourceVector / mNodeMap triple.
type LinkBase struct {
	name              string
	nodeMap           []int
	admittanceMatrix  []float64
	sourceVector      []float64
}

// NewLinkBase creates a LinkBase with the given name and node map. The
// admittance matrix is sized len(nodeMap)^2; the source vector
// len(nodeMap).
func NewLinkBase(name string, nodeMap []int) LinkBase {
	n := len(nodeMap)

	return LinkBase{
		name:             name,
		nodeMap:          nodeMap,
		admittanceMatrix: make([]float64, n*n),
		sourceVector:     make([]float64, n),
	}
}

// Name returns the link's name.
func (b *LinkBase) Name() string { return b.name }

// NodeMap returns the link's port-to-node-index mapping.
func (b *LinkBase) NodeMap() []int { return b.nodeMap }

// AdmittanceMatrix returns the link's admittance contribution.
func (b *LinkBase) AdmittanceMatrix() []float64 { return b.admittanceMatrix }

// SourceVector returns the link's source-vector contribution.
func (b *LinkBase) SourceVector() []float64 { return b.sourceVector }

// SetAdmittance sets the (i,j) entry of the link's admittance matrix,
// where i and j index the link's own ports (0-based), not the network's
// node indices.
func (b *LinkBase) SetAdmittance(i, j int, value float64) {
	b.admittanceMatrix[i*len(b.nodeMap)+j] = value
}

// SetSource sets the i'th entry of the link's source vector.
func (b *LinkBase) SetSource(i int, value float64) {
	b.sourceVector[i] = value
}
