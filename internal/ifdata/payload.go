// Package ifdata implements the distributed interface's wire record
// (spec.md §3, §4.1): a versioned, fixed-size value type exchanged once
// per step between the two sides of a distributed fluid interface.
// Buffers are sized once at construction from the negotiated interface
// species counts and mutated in place thereafter — no per-step heap
// churn, matching spec.md §3's lifecycle note.
package ifdata

// Payload is one tick's worth of interface state in one direction.
// Grounded on GunnsFluidDistributedIf::Ifdata's field layout; Go field
// names follow the wire layout of spec.md §6.
type Payload struct {
	FrameCount    uint64
	FrameLoopback uint64
	DemandMode    bool
	Capacitance   float64
	Source        float64
	Energy        float64

	moleFractions   []float64
	tcMoleFractions []float64
}

// New allocates a Payload whose mixture buffers are sized numFluid and
// numTc — the negotiated interface widths of spec.md §3's "Interface
// Sizes" — and never resized afterward.
func New(numFluid, numTc int) *Payload {
	return &Payload{
		moleFractions:   make([]float64, numFluid),
		tcMoleFractions: make([]float64, numTc),
	}
}

// NumFluid returns the payload's bulk interface width.
func (p *Payload) NumFluid() int { return len(p.moleFractions) }

// NumTc returns the payload's trace-compound interface width.
func (p *Payload) NumTc() int { return len(p.tcMoleFractions) }

// MoleFractions returns the payload's bulk mixture, read-only.
func (p *Payload) MoleFractions() []float64 { return p.moleFractions }

// TcMoleFractions returns the payload's trace mixture, read-only.
func (p *Payload) TcMoleFractions() []float64 { return p.tcMoleFractions }

// SetBulk copies vec into the payload's bulk mixture buffer. If vec is
// shorter, the remaining entries are zero-filled; if vec is longer, the
// excess is dropped. The buffer itself is never resized, per spec.md
// §4.1.
func (p *Payload) SetBulk(vec []float64) {
	copyZeroFill(p.moleFractions, vec)
}

// GetBulk copies the payload's bulk mixture into out, zero-filling or
// truncating exactly as SetBulk does.
func (p *Payload) GetBulk(out []float64) {
	copyZeroFill(out, p.moleFractions)
}

// SetTrace copies vec into the payload's trace mixture buffer, with the
// same zero-fill-on-mismatch tolerance as SetBulk.
func (p *Payload) SetTrace(vec []float64) {
	copyZeroFill(p.tcMoleFractions, vec)
}

// GetTrace copies the payload's trace mixture into out.
func (p *Payload) GetTrace(out []float64) {
	copyZeroFill(out, p.tcMoleFractions)
}

func copyZeroFill(dst, src []float64) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}

	copy(dst, src[:n])

	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// Valid is the validity predicate of spec.md §3: frameCount ≥ 1,
// energy > 0, capacitance ≥ 0, source ≥ 0 when advertising pressure
// (!DemandMode), and every mixture entry ≥ 0.
func (p *Payload) Valid() bool {
	if p.FrameCount < 1 {
		return false
	}

	if p.Energy <= 0 {
		return false
	}

	if p.Capacitance < 0 {
		return false
	}

	if !p.DemandMode && p.Source < 0 {
		return false
	}

	for _, f := range p.moleFractions {
		if f < 0 {
			return false
		}
	}

	for _, f := range p.tcMoleFractions {
		if f < 0 {
			return false
		}
	}

	return true
}

// CopyFrom overwrites p's scalars and mixture contents from other,
// leaving p's own buffer sizes unchanged — spec.md §4.1's copy
// assignment: "copies scalars and copies the mixture arrays
// element-wise, leaving the size parameters unchanged".
func (p *Payload) CopyFrom(other *Payload) {
	p.FrameCount = other.FrameCount
	p.FrameLoopback = other.FrameLoopback
	p.DemandMode = other.DemandMode
	p.Capacitance = other.Capacitance
	p.Source = other.Source
	p.Energy = other.Energy

	p.SetBulk(other.moleFractions)
	p.SetTrace(other.tcMoleFractions)
}
