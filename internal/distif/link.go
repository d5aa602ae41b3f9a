// Package distif is the distributed fluid interface itself (spec.md §1,
// §4): the half-link that wires the Interface Payload, Mode Arbiter,
// Demand Controller, and Supply Responder together into the single
// network.Link capability set the solver treats like any other link.
package distif

import (
	"github.com/sarchlab/distfluid/internal/arbiter"
	"github.com/sarchlab/distfluid/internal/demand"
	"github.com/sarchlab/distfluid/internal/fluid"
	"github.com/sarchlab/distfluid/internal/ifdata"
	"github.com/sarchlab/distfluid/internal/network"
	"github.com/sarchlab/distfluid/internal/supply"
	"github.com/sarchlab/distfluid/internal/transport"
)

// otherLink is one registered sibling distributed-interface link sharing
// this side's network, per spec.md §9's "other interface" siblings note.
type otherLink struct {
	link *Link
	sib  *supply.Sibling
}

// Link is one side of one distributed fluid interface. It implements
// network.Link, so a Solver stepping the local network treats it exactly
// like a Conductor or a Capacitor.
type Link struct {
	network.LinkBase

	name string
	cfg  ConfigData

	node      *network.Node
	nodeIndex int

	arb        *arbiter.Arbiter
	demandCtl  *demand.Controller
	supplyResp *supply.Responder

	port     *transport.Port
	peerPort transport.RemotePort
	seq      uint64

	inbound  *ifdata.Payload
	outbound *ifdata.Payload

	loopLatency      int
	localCapacitance float64
	demandFlux       float64

	siblings []*otherLink
}

// New creates a distributed fluid interface link on node (at nodeIndex
// within its owning network, whose ground node is at groundIndex),
// controlling volume through capHandle, and exchanging payloads with the
// peer named peerPort over port.
func New(
	name string,
	nodeIndex int,
	groundIndex int,
	node *network.Node,
	capHandle network.CapacitorHandle,
	port *transport.Port,
	peerPort transport.RemotePort,
	cfg ConfigData,
) (*Link, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if node == nil {
		return nil, &ConfigurationError{Reason: "link not mapped to a node"}
	}

	if nodeIndex == groundIndex {
		return nil, &ConfigurationError{Reason: "link mapped to the ground node"}
	}

	if capHandle == nil {
		return nil, &ConfigurationError{Reason: "missing capacitor handle"}
	}

	arb, err := arbiter.New(arbiter.Config{
		IsPairMaster:           cfg.IsPairMaster,
		ModingCapacitanceRatio: cfg.ModingCapacitanceRatio,
		ForceDemandMode:        cfg.ForceDemandMode,
		ForceSupplyMode:        cfg.ForceSupplyMode,
	}, capHandle)
	if err != nil {
		return nil, err
	}

	numFluid := node.Content().Config.NumBulk()
	switch {
	case cfg.PeerBulk != nil:
		numFluid = fluid.CommonPrefixLen(node.Content().Config.Bulk, cfg.PeerBulk)
	case cfg.NumFluidOverride > 0:
		numFluid = cfg.NumFluidOverride
	}

	numTc := node.Content().Config.NumTrace()
	switch {
	case cfg.PeerTrace != nil:
		numTc = fluid.CommonPrefixLen(node.Content().Config.Trace, cfg.PeerTrace)
	case cfg.NumTcOverride > 0:
		numTc = cfg.NumTcOverride
	}

	molarScale := 1.0
	if cfg.MolPerKmol > 0 {
		molarScale = 1 / cfg.MolPerKmol
	}

	// Seed the node's energy representation from the link's own config
	// now, so a side that starts and stays in Supply mode (and so never
	// runs demand.Controller.IngestComposition, the only other writer of
	// this flag) still publishes the representation it was configured
	// for, matching GunnsFluidDistributedIf::outputFluid's unconditional
	// check of the link-level mUseEnthalpy.
	if cfg.UseEnthalpy {
		content := node.Content()
		content.UseEnthalpy = true
		content.SpecificEnthalpy = fluid.EnthalpyFromTemperature(
			content.Config, content.BulkMoleFractions, content.Temperature)
	}

	return &Link{
		LinkBase:  network.NewLinkBase(name, []int{nodeIndex}),
		name:      name,
		cfg:       cfg,
		node:      node,
		nodeIndex: nodeIndex,
		arb:       arb,
		demandCtl: demand.New(demand.Config{
			DemandFilterConstA:     cfg.DemandFilterConstA,
			DemandFilterConstB:     cfg.DemandFilterConstB,
			ModingCapacitanceRatio: cfg.ModingCapacitanceRatio,
			DemandOption:           cfg.DemandOption,
			UseEnthalpy:            cfg.UseEnthalpy,
			BlockageFraction:       cfg.BlockageFraction,
			PascalsPerKpa:          cfg.PascalsPerKpa,
		}),
		supplyResp: supply.New(name, node, supply.Config{MolarUnitScale: molarScale}),
		port:       port,
		peerPort:   peerPort,
		inbound:    ifdata.New(numFluid, numTc),
		outbound:   ifdata.New(numFluid, numTc),
	}, nil
}

// Mode returns the link's current arbitrated role.
func (l *Link) Mode() arbiter.Mode { return l.arb.Mode() }

// LoopLatency returns the round-trip frame delay most recently measured
// in ProcessInputs, for introspection and testing.
func (l *Link) LoopLatency() int { return l.loopLatency }

// Snapshot returns the most recently published outbound payload fields
// alongside the node's solved pressure, for monitoring and recording. It
// does not mutate link state.
func (l *Link) Snapshot() (frameCount uint64, demandMode bool, capacitance, source, energy, pressure float64) {
	return l.outbound.FrameCount, l.outbound.DemandMode, l.outbound.Capacitance,
		l.outbound.Source, l.outbound.Energy, l.node.Potential()
}

// AddOtherIf registers other as a sibling interface sharing this side's
// network, so this link's outbound capacitance excludes other's
// effective contribution when other is in Demand (spec.md §4.4 step 1,
// §9). It rejects self-insertion and deduplicates repeated registration.
func (l *Link) AddOtherIf(other *Link) error {
	if other == l {
		return &ConfigurationError{Reason: "a link cannot be its own sibling"}
	}

	for _, o := range l.siblings {
		if o.link == other {
			return nil
		}
	}

	sib := &supply.Sibling{Name: other.name, NodeIndex: other.nodeIndex}
	if err := l.supplyResp.AddSibling(sib); err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}

	l.siblings = append(l.siblings, &otherLink{link: other, sib: sib})

	return nil
}

func (l *Link) refreshSiblings() {
	for _, o := range l.siblings {
		o.sib.Capacitance = o.link.demandCtl.SuppliedCapacitance
	}
}

// ProcessInputs implements network.Link: it drains the latest inbound
// payload from the transport, measures loop latency, runs the Mode
// Arbiter's pre-solve rules, and (in Demand mode) ingests the peer's
// composition into the node — spec.md §2 steps (a)-(c).
func (l *Link) ProcessInputs() error {
	for {
		msg := l.port.RetrieveIncoming()
		if msg == nil {
			break
		}

		if pm, ok := msg.(*payloadMsg); ok {
			l.inbound.CopyFrom(pm.payload)
		}
	}

	if l.inbound.Valid() {
		// l.outbound.FrameCount+1 is this tick's about-to-be-published
		// frame count (the increment itself happens later, in
		// ProcessOutputs, to keep FrameLoopback assembly there) —
		// matching GunnsFluidDistributedIf::processInputs(), which
		// increments mOutData.mFrameCount before computing mLoopLatency
		// from the new value in the same call.
		latency := int(l.outbound.FrameCount) + 1 - int(l.inbound.FrameLoopback)
		if latency < 0 {
			latency = 0
		}

		l.loopLatency = latency
	}

	l.refreshSiblings()
	l.localCapacitance = l.supplyResp.PublishCapacitance()
	l.supplyResp.RequestCapacitanceMeasurement()

	l.arb.EvaluatePreSolve(l.inbound, l.localCapacitance)

	if l.arb.Mode() == arbiter.Demand && l.inbound.Valid() {
		if err := l.demandCtl.IngestComposition(l.inbound, l.node.Content()); err != nil {
			return &InvalidInterfaceData{Reason: err.Error()}
		}
	}

	return nil
}

// StampAdmittance implements network.Link: in Demand mode, stamps the
// lag-aware conductance of spec.md §4.3; in Supply mode, stamps nothing
// (the Supply side contributes only a source term).
func (l *Link) StampAdmittance(dt float64) {
	if l.arb.Mode() != arbiter.Demand {
		l.SetAdmittance(0, 0, 0)
		return
	}

	g, _, _ := l.demandCtl.Step(l.inbound, l.node.Potential(), l.localCapacitance, dt, l.loopLatency)
	l.SetAdmittance(0, 0, g)
}

// StampSource implements network.Link: in Demand mode, the pressure
// source G·p_peer; in Supply mode, the molar outflow the peer's Demand
// advertisement requests (spec.md §4.4 step 4), recovered to zero flow
// on the "transient data mismatch" of spec.md §7 item 3.
func (l *Link) StampSource() {
	if l.arb.Mode() == arbiter.Demand {
		l.SetSource(0, l.demandCtl.Conductance*l.demandCtl.SourcePressure)
		return
	}

	value, err := l.supplyResp.StampDemandOutflow(l.inbound)
	if err != nil {
		l.SetSource(0, 0)
		return
	}

	l.SetSource(0, value)
}

// ComputeFlows implements network.Link: in Demand mode, derives the
// molar flow the stamped conductance actually carried this step, signed
// positive for flow from the peer into the local node (spec.md §3's
// `source` sign convention).
func (l *Link) ComputeFlows(dt float64) {
	if l.arb.Mode() != arbiter.Demand {
		l.demandFlux = 0
		return
	}

	l.demandFlux = l.AdmittanceMatrix()[0] * (l.demandCtl.SourcePressure - l.node.Potential())
}

// TransportFlows implements network.Link: in Supply mode with a valid
// Demand inbound, ingests the peer's mixture into the node's inflow,
// falling back to the node's own contents if the inbound mixture carries
// negative fractions (spec.md §7 item 3).
func (l *Link) TransportFlows(dt float64) {
	if l.arb.Mode() != arbiter.Supply || !l.inbound.Valid() || !l.inbound.DemandMode {
		return
	}

	bulkIn := make([]float64, l.node.Content().Config.NumBulk())
	l.inbound.GetBulk(bulkIn)

	if supply.IngestInflow(l.node, bulkIn) {
		// a negative fraction forced a fallback to node contents; the
		// tick is not fatal (spec.md §7 item 3), just degraded.
		return
	}

	l.node.ScheduleOutflux(abs(l.SourceVector()[0]))
}

// ProcessOutputs implements network.Link: it runs the Mode Arbiter's
// post-solve capacitance-driven rule (Supply mode only), assembles the
// outbound payload from the just-solved node state, and publishes it —
// spec.md §2 steps (d)-(f).
func (l *Link) ProcessOutputs() error {
	l.refreshSiblings()

	if l.arb.Mode() == arbiter.Supply {
		l.arb.EvaluatePostSolve(l.supplyResp.PublishCapacitance(), l.inbound.Capacitance, l.loopLatency)
	}

	l.outbound.FrameCount++
	l.outbound.FrameLoopback = l.inbound.FrameCount

	demandModeNow := l.arb.Mode() == arbiter.Demand
	l.outbound.DemandMode = demandModeNow

	bulk, trace, energy, moleFractionSum := l.supplyResp.PublishMixture()
	l.outbound.SetBulk(bulk)
	l.outbound.SetTrace(trace)
	l.outbound.Energy = energy

	if demandModeNow {
		l.outbound.Capacitance = l.node.NetworkCapacitance()
		l.outbound.Source = l.demandFlux * l.cfg.MolPerKmol * moleFractionSum
	} else {
		l.outbound.Capacitance = l.supplyResp.PublishCapacitance()
		l.outbound.Source = l.supplyResp.PublishPressure(l.cfg.PascalsPerKpa)

		if l.arb.ConsumeZeroSourceOnFlip() {
			l.outbound.Source = 0
		}
	}

	l.publish()

	return nil
}

func (l *Link) publish() {
	l.seq++

	out := ifdata.New(l.outbound.NumFluid(), l.outbound.NumTc())
	out.CopyFrom(l.outbound)

	msg := &payloadMsg{
		meta: transport.MsgMeta{
			Src:    l.port.AsRemote(),
			Dst:    l.peerPort,
			SeqNum: l.seq,
		},
		payload: out,
	}

	l.port.Send(msg)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
