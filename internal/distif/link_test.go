package distif

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/distfluid/internal/arbiter"
	"github.com/sarchlab/distfluid/internal/fluid"
	"github.com/sarchlab/distfluid/internal/ifdata"
	"github.com/sarchlab/distfluid/internal/network"
	"github.com/sarchlab/distfluid/internal/transport"
)

func testFluidConfig() *fluid.Config {
	return &fluid.Config{
		Bulk: []fluid.Species{
			{Name: "O2", MolecularWeight: 32, SpecificHeatCp: 918},
			{Name: "N2", MolecularWeight: 28, SpecificHeatCp: 1040},
		},
	}
}

type side struct {
	net    *network.Network
	node   *network.Node
	cap    *network.Capacitor
	solver *network.Solver
	link   *Link
	port   *transport.Port
}

func newSide(id string, isPairMaster bool, volume, pressure float64) *side {
	cfg := testFluidConfig()
	net := network.NewNetwork(0)

	ground := network.NewNode(0, 0, fluid.NewState(cfg))
	node := network.NewNode(1, volume, fluid.NewState(cfg))
	node.SetPotential(pressure)
	node.Content().BulkMoleFractions = []float64{0.21, 0.79}

	net.AddNode(ground)
	net.AddNode(node)

	cap := network.NewCapacitor(id+".cap", 1, node, 0.02)
	net.AddLink(cap)

	port := transport.NewPort(id, 4, 4)

	linkCfg := DefaultConfig()
	linkCfg.IsPairMaster = isPairMaster

	link, err := New(id+".if", 1, 0, node, cap, port, transport.RemotePort(otherName(id)), linkCfg)
	Expect(err).NotTo(HaveOccurred())

	net.AddLink(link)

	return &side{net: net, node: node, cap: cap, solver: network.NewSolver(net), link: link, port: port}
}

func otherName(id string) string {
	if id == "a" {
		return "b"
	}

	return "a"
}

func step(sides ...*side) {
	for _, s := range sides {
		Expect(s.solver.Step(0.1)).To(Succeed())
	}
}

var _ = Describe("New configuration errors", func() {
	It("rejects a link mapped to the network's ground node", func() {
		cfg := testFluidConfig()
		ground := network.NewNode(0, 0, fluid.NewState(cfg))
		port := transport.NewPort("g", 4, 4)

		_, err := New("g.if", 0, 0, ground, nil, port, transport.RemotePort("other"), DefaultConfig())

		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
	})
})

var _ = Describe("P7: loop latency on an unchanged echo", func() {
	It("converges to 1 once the peer echoes every published frame back", func() {
		cfg := testFluidConfig()
		net := network.NewNetwork(0)

		ground := network.NewNode(0, 0, fluid.NewState(cfg))
		node := network.NewNode(1, 1.0, fluid.NewState(cfg))
		node.SetPotential(101.325)
		node.Content().Temperature = 294
		node.Content().BulkMoleFractions = []float64{0.21, 0.79}

		net.AddNode(ground)
		net.AddNode(node)

		cap := network.NewCapacitor("e.cap", 1, node, 0.02)
		net.AddLink(cap)

		port := transport.NewPort("e", 4, 4)

		link, err := New("e.if", 1, 0, node, cap, port, transport.RemotePort("peer"), DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 5; i++ {
			Expect(link.ProcessInputs()).To(Succeed())
			link.StampAdmittance(0.1)
			link.StampSource()
			link.ComputeFlows(0.1)
			link.TransportFlows(0.1)
			Expect(link.ProcessOutputs()).To(Succeed())

			echoed := ifdata.New(link.outbound.NumFluid(), link.outbound.NumTc())
			echoed.CopyFrom(link.outbound)
			echoed.FrameLoopback = echoed.FrameCount
			link.inbound.CopyFrom(echoed)
		}

		Expect(link.LoopLatency()).To(Equal(1))
	})
})

var _ = Describe("useEnthalpy wiring", func() {
	It("publishes specific enthalpy from construction even when the link never enters Demand", func() {
		cfg := testFluidConfig()
		net := network.NewNetwork(0)

		ground := network.NewNode(0, 0, fluid.NewState(cfg))
		node := network.NewNode(1, 1.0, fluid.NewState(cfg))
		node.Content().Temperature = 300
		node.Content().BulkMoleFractions = []float64{0.21, 0.79}

		net.AddNode(ground)
		net.AddNode(node)

		cap := network.NewCapacitor("h.cap", 1, node, 0.02)
		net.AddLink(cap)

		port := transport.NewPort("h", 4, 4)

		linkCfg := DefaultConfig()
		linkCfg.UseEnthalpy = true
		linkCfg.ForceSupplyMode = true

		link, err := New("h.if", 1, 0, node, cap, port, transport.RemotePort("peer"), linkCfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(link.ProcessInputs()).To(Succeed())
		link.StampAdmittance(0.1)
		link.StampSource()
		link.ComputeFlows(0.1)
		link.TransportFlows(0.1)
		Expect(link.ProcessOutputs()).To(Succeed())

		expected := fluid.EnthalpyFromTemperature(cfg, []float64{0.21, 0.79}, 300)
		Expect(link.outbound.Energy).To(BeNumerically("~", expected, 1e-9))
	})
})

var _ = Describe("Demand-mode outbound flux scaling", func() {
	It("scales the outbound source by PublishMixture's pre-normalization mole fraction sum", func() {
		cfg := &fluid.Config{
			Bulk: []fluid.Species{
				{Name: "O2", MolecularWeight: 32, SpecificHeatCp: 918},
				{Name: "N2", MolecularWeight: 28, SpecificHeatCp: 1040},
			},
			Trace: []fluid.Species{
				{Name: "CO2", MolecularWeight: 44, SpecificHeatCp: 846},
			},
		}

		net := network.NewNetwork(0)
		ground := network.NewNode(0, 0, fluid.NewState(cfg))
		node := network.NewNode(1, 1.0, fluid.NewState(cfg))
		node.Content().Temperature = 294
		node.Content().BulkMoleFractions = []float64{0.21, 0.79}
		node.Content().TraceMoleFractions = []float64{0.01}

		net.AddNode(ground)
		net.AddNode(node)

		cap := network.NewCapacitor("d.cap", 1, node, 0.02)
		net.AddLink(cap)

		port := transport.NewPort("d", 4, 4)

		linkCfg := DefaultConfig()
		linkCfg.ForceDemandMode = true

		link, err := New("d.if", 1, 0, node, cap, port, transport.RemotePort("peer"), linkCfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(link.ProcessInputs()).To(Succeed())
		Expect(link.Mode()).To(Equal(arbiter.Demand))

		link.demandFlux = 2.0

		Expect(link.ProcessOutputs()).To(Succeed())

		Expect(link.outbound.Source).To(BeNumerically("~", 2.0*linkCfg.MolPerKmol*1.01, 1e-6))
	})
})

var _ = Describe("New negotiated interface width", func() {
	It("sizes the interface to the common prefix of the local and peer species lists", func() {
		cfg := testFluidConfig()
		net := network.NewNetwork(0)

		ground := network.NewNode(0, 0, fluid.NewState(cfg))
		node := network.NewNode(1, 1.0, fluid.NewState(cfg))

		net.AddNode(ground)
		net.AddNode(node)

		cap := network.NewCapacitor("c.cap", 1, node, 0.02)
		net.AddLink(cap)

		port := transport.NewPort("c", 4, 4)

		linkCfg := DefaultConfig()
		linkCfg.PeerBulk = []fluid.Species{
			{Name: "O2", MolecularWeight: 32, SpecificHeatCp: 918},
		}

		link, err := New("c.if", 1, 0, node, cap, port, transport.RemotePort("other"), linkCfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(link.inbound.NumFluid()).To(Equal(1))
		Expect(link.outbound.NumFluid()).To(Equal(1))
	})
})

var _ = Describe("Link end-to-end", func() {
	var a, b *side
	var conn *directConnection

	BeforeEach(func() {
		a = newSide("a", true, 1.0, 101.325)
		b = newSide("b", false, 1.0, 101.325)

		conn = newDirectConnection()
		conn.PlugIn(a.port)
		conn.PlugIn(b.port)
	})

	Describe("scenario 1: start-up, master wins tie", func() {
		It("settles with A in Demand and B in Supply", func() {
			step(a, b)
			step(a, b)

			Expect(a.link.Mode()).To(Equal(arbiter.Demand))
			Expect(b.link.Mode()).To(Equal(arbiter.Supply))
		})
	})

	Describe("P1: demand exclusivity", func() {
		It("never has both sides in Demand for more than one round trip", func() {
			bothDemandStreak := 0

			for i := 0; i < 50; i++ {
				step(a, b)

				if a.link.Mode() == arbiter.Demand && b.link.Mode() == arbiter.Demand {
					bothDemandStreak++
				} else {
					bothDemandStreak = 0
				}

				Expect(bothDemandStreak).To(BeNumerically("<=", 1))
			}
		})
	})

	Describe("P3: frameCount is strictly monotone", func() {
		It("increases every tick on both sides", func() {
			var lastA, lastB uint64

			for i := 0; i < 10; i++ {
				step(a, b)

				Expect(a.link.outbound.FrameCount).To(BeNumerically(">", lastA))
				Expect(b.link.outbound.FrameCount).To(BeNumerically(">", lastB))
				lastA = a.link.outbound.FrameCount
				lastB = b.link.outbound.FrameCount
			}
		})
	})

	Describe("P4: demand side reports zero node volume", func() {
		It("zeroes the node volume once A takes Demand", func() {
			for i := 0; i < 5; i++ {
				step(a, b)
			}

			Expect(a.link.Mode()).To(Equal(arbiter.Demand))
			Expect(a.node.Volume()).To(Equal(0.0))
		})
	})

	Describe("scenario 6: peer goes silent", func() {
		It("holds last state and raises no error when B stops publishing", func() {
			for i := 0; i < 5; i++ {
				step(a, b)
			}

			lastMode := a.link.Mode()

			for i := 0; i < 100; i++ {
				Expect(a.solver.Step(0.1)).To(Succeed())
			}

			Expect(a.link.Mode()).To(Equal(lastMode))
		})
	})

	Describe("P5: outbound capacitance is never negative", func() {
		It("keeps B's advertised capacitance >= 0 across many ticks", func() {
			for i := 0; i < 30; i++ {
				step(a, b)
				Expect(b.link.outbound.Capacitance).To(BeNumerically(">=", 0))
				Expect(a.link.outbound.Capacitance).To(BeNumerically(">=", 0))
			}
		})
	})
})
