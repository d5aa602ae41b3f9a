package arbiter

import (
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/distfluid/internal/ifdata"
)

func validPayload(demandMode bool, capacitance float64) *ifdata.Payload {
	p := ifdata.New(0, 0)
	p.FrameCount = 1
	p.Energy = 300
	p.DemandMode = demandMode
	p.Capacitance = capacitance
	p.Source = 0

	return p
}

var _ = Describe("Arbiter", func() {
	var ctrl *gomock.Controller
	var cap *MockCapacitorHandle

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		cap = NewMockCapacitorHandle(ctrl)
	})

	It("rejects both force flags set", func() {
		_, err := New(Config{ForceDemandMode: true, ForceSupplyMode: true, ModingCapacitanceRatio: 1.25}, cap)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a moding ratio that is not > 1", func() {
		_, err := New(Config{ModingCapacitanceRatio: 1.0}, cap)
		Expect(err).To(HaveOccurred())
	})

	Describe("scenario 1: start-up, master wins tie", func() {
		It("flips the master to Demand and saves supplyVolume", func() {
			cap.EXPECT().Volume().Return(5.0)
			cap.EXPECT().EditVolume(true, 0.0)

			a, err := New(Config{IsPairMaster: true, ModingCapacitanceRatio: 1.25}, cap)
			Expect(err).NotTo(HaveOccurred())

			inbound := validPayload(false, 1.0) // peer also Supply, same capacitance
			a.EvaluatePreSolve(inbound, 1.0)

			Expect(a.Mode()).To(Equal(Demand))
			Expect(a.SupplyVolume()).To(Equal(5.0))
		})

		It("leaves the non-master in Supply on a tie", func() {
			a, err := New(Config{IsPairMaster: false, ModingCapacitanceRatio: 1.25}, cap)
			Expect(err).NotTo(HaveOccurred())

			inbound := validPayload(false, 1.0)
			a.EvaluatePreSolve(inbound, 1.0)

			Expect(a.Mode()).To(Equal(Supply))
		})
	})

	Describe("scenario 2: capacitance-driven flip", func() {
		It("does not flip a Demand side via the post-solve rule", func() {
			a, err := New(Config{ModingCapacitanceRatio: 1.25}, cap)
			Expect(err).NotTo(HaveOccurred())
			a.mode = Demand

			a.EvaluatePostSolve(10, 20, 0)

			Expect(a.Mode()).To(Equal(Demand))
		})

		It("gates the flip on framesSinceFlip exceeding loopLatency", func() {
			a, err := New(Config{ModingCapacitanceRatio: 1.25}, cap)
			Expect(err).NotTo(HaveOccurred())

			// framesSinceFlip starts at 0, so framesSinceFlip > loopLatency=0
			// is false even though 10*1.25=12.5 < 20 would otherwise flip.
			a.EvaluatePostSolve(10, 20, 0)

			Expect(a.Mode()).To(Equal(Supply))
		})

		It("flips Supply to Demand once the hysteresis band is exceeded", func() {
			cap.EXPECT().Volume().Return(2.0)
			cap.EXPECT().EditVolume(true, 0.0)

			a, err := New(Config{ModingCapacitanceRatio: 1.25}, cap)
			Expect(err).NotTo(HaveOccurred())
			a.framesSinceFlip = 10

			a.EvaluatePostSolve(10, 100, 0) // 10*1.25=12.5 < 100

			Expect(a.Mode()).To(Equal(Demand))
			Expect(a.SupplyVolume()).To(Equal(2.0))
		})

		It("does not flip while framesSinceFlip has not exceeded loopLatency", func() {
			a, err := New(Config{ModingCapacitanceRatio: 1.25}, cap)
			Expect(err).NotTo(HaveOccurred())
			a.framesSinceFlip = 1

			a.EvaluatePostSolve(10, 100, 5)

			Expect(a.Mode()).To(Equal(Supply))
		})
	})

	Describe("P1: demand exclusivity", func() {
		It("flips the handshake responder back to Supply when the peer takes over Demand", func() {
			cap.EXPECT().Volume().Times(0)
			cap.EXPECT().EditVolume(true, 3.0)

			a, err := New(Config{ModingCapacitanceRatio: 1.25}, cap)
			Expect(err).NotTo(HaveOccurred())
			a.mode = Demand
			a.supplyVolume = 3.0
			a.prevInboundDemand = false

			inbound := validPayload(true, 1.0)
			a.EvaluatePreSolve(inbound, 1.0)

			Expect(a.Mode()).To(Equal(Supply))
			Expect(a.ConsumeZeroSourceOnFlip()).To(BeTrue())
		})

		It("does not flip back again if the peer was already in demand last frame", func() {
			a, err := New(Config{ModingCapacitanceRatio: 1.25}, cap)
			Expect(err).NotTo(HaveOccurred())
			a.mode = Demand
			a.prevInboundDemand = true

			inbound := validPayload(true, 1.0)
			a.EvaluatePreSolve(inbound, 1.0)

			Expect(a.Mode()).To(Equal(Demand))
		})
	})

	It("force flags override arbitration", func() {
		cap.EXPECT().Volume().Return(0.0)
		cap.EXPECT().EditVolume(true, 0.0)

		a, err := New(Config{ForceDemandMode: true, ModingCapacitanceRatio: 1.25}, cap)
		Expect(err).NotTo(HaveOccurred())

		a.EvaluatePreSolve(validPayload(false, 100), 1.0)

		Expect(a.Mode()).To(Equal(Demand))
	})
})
