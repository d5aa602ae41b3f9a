package supply

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/distfluid/internal/fluid"
	"github.com/sarchlab/distfluid/internal/ifdata"
	"github.com/sarchlab/distfluid/internal/network"
)

func twoNodeConfig() *fluid.Config {
	return &fluid.Config{
		Bulk: []fluid.Species{{Name: "O2", MolecularWeight: 32}, {Name: "N2", MolecularWeight: 28}},
	}
}

var _ = Describe("Responder", func() {
	Describe("P5: outbound capacitance never goes negative", func() {
		It("floors the result at zero when siblings would subtract more than available", func() {
			node := network.NewNode(1, 1.0, fluid.NewState(twoNodeConfig()))
			r := New("r", node, Config{MolarUnitScale: 1})

			// Manually seed the node's solver-derived state as the
			// solver would after a measureCapacitances pass.
			setNetworkCapacitance(node, 5.0, []float64{0, 0.1, 0.2})

			Expect(r.AddSibling(&Sibling{Name: "sib", NodeIndex: 2, Capacitance: 1000})).To(Succeed())

			Expect(r.PublishCapacitance()).To(Equal(0.0))
		})

		It("subtracts a sibling's effective capacitance via the dp ratio", func() {
			node := network.NewNode(1, 1.0, fluid.NewState(twoNodeConfig()))
			r := New("r", node, Config{MolarUnitScale: 1})

			setNetworkCapacitance(node, 10.0, []float64{0, 1.0, 0.5})
			Expect(r.AddSibling(&Sibling{Name: "sib", NodeIndex: 2, Capacitance: 4.0})).To(Succeed())

			// effective = 4.0 * 0.5/1.0 = 2.0; result = 10 - 2 = 8
			Expect(r.PublishCapacitance()).To(BeNumerically("~", 8.0, 1e-9))
		})

		It("rejects a sibling that is itself", func() {
			node := network.NewNode(1, 1.0, fluid.NewState(twoNodeConfig()))
			r := New("r", node, Config{MolarUnitScale: 1})

			err := r.AddSibling(&Sibling{Name: "r", NodeIndex: 1})
			Expect(err).To(HaveOccurred())
		})

		It("deduplicates siblings added more than once", func() {
			node := network.NewNode(1, 1.0, fluid.NewState(twoNodeConfig()))
			r := New("r", node, Config{MolarUnitScale: 1})

			Expect(r.AddSibling(&Sibling{Name: "sib", NodeIndex: 2})).To(Succeed())
			Expect(r.AddSibling(&Sibling{Name: "sib", NodeIndex: 2})).To(Succeed())
			Expect(r.siblings).To(HaveLen(1))
		})
	})

	It("publishes mixture fractions renormalized together to sum to 1", func() {
		node := network.NewNode(1, 1.0, fluid.NewState(twoNodeConfig()))
		node.Content().BulkMoleFractions = []float64{0.105, 0.395}
		r := New("r", node, Config{MolarUnitScale: 1})

		bulk, _, _, _ := r.PublishMixture()
		Expect(bulk[0] + bulk[1]).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("stamps a negative molar outflow when the peer is in Demand", func() {
		node := network.NewNode(1, 1.0, fluid.NewState(twoNodeConfig()))
		r := New("r", node, Config{MolarUnitScale: 1})

		inbound := ifdata.New(2, 0)
		inbound.FrameCount = 1
		inbound.Energy = 300
		inbound.DemandMode = true
		inbound.Source = 2.0
		inbound.SetBulk([]float64{0.5, 0.5})

		source, err := r.StampDemandOutflow(inbound)
		Expect(err).NotTo(HaveOccurred())
		Expect(source).To(BeNumerically("~", -2.0, 1e-9))
	})

	It("stamps nothing when the peer is not in Demand", func() {
		node := network.NewNode(1, 1.0, fluid.NewState(twoNodeConfig()))
		r := New("r", node, Config{MolarUnitScale: 1})

		inbound := ifdata.New(2, 0)
		inbound.FrameCount = 1
		inbound.Energy = 300
		inbound.DemandMode = false
		inbound.Source = 100

		source, err := r.StampDemandOutflow(inbound)
		Expect(err).NotTo(HaveOccurred())
		Expect(source).To(Equal(0.0))
	})
})

// setNetworkCapacitance seeds the node's solver-derived fields directly,
// standing in for a solver pass, so the responder can be tested without
// spinning up a full network.Solver.
func setNetworkCapacitance(node *network.Node, capacitance float64, deltaPotentialRow []float64) {
	node.SeedCapacitanceMeasurement(capacitance, deltaPotentialRow)
}
