package ifdata

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Payload", func() {
	It("should be invalid before the first publish", func() {
		p := New(2, 0)
		Expect(p.Valid()).To(BeFalse())
	})

	It("should be valid once published with sane fields", func() {
		p := New(2, 0)
		p.FrameCount = 1
		p.Energy = 300
		p.Capacitance = 1.0
		p.Source = 101325
		p.SetBulk([]float64{0.21, 0.79})

		Expect(p.Valid()).To(BeTrue())
	})

	It("should be invalid when advertising a negative pressure", func() {
		p := New(2, 0)
		p.FrameCount = 1
		p.Energy = 300
		p.DemandMode = false
		p.Source = -1

		Expect(p.Valid()).To(BeFalse())
	})

	It("should tolerate a negative source in demand mode", func() {
		p := New(2, 0)
		p.FrameCount = 1
		p.Energy = 300
		p.DemandMode = true
		p.Source = -5

		Expect(p.Valid()).To(BeTrue())
	})

	It("should be invalid when a mixture entry is negative", func() {
		p := New(2, 0)
		p.FrameCount = 1
		p.Energy = 300
		p.SetBulk([]float64{0.5, -0.1})

		Expect(p.Valid()).To(BeFalse())
	})

	Describe("species mismatch zero-fill (scenario 5)", func() {
		It("should zero-fill when local has more species than the interface", func() {
			p := New(2, 0)
			p.SetBulk([]float64{0.21, 0.79})

			out := make([]float64, 3)
			p.GetBulk(out)

			Expect(out).To(Equal([]float64{0.21, 0.79, 0}))
		})

		It("should drop species present on the interface but not local", func() {
			p := New(2, 0)
			p.SetBulk([]float64{0.21, 0.79, 0.5})

			Expect(p.MoleFractions()).To(Equal([]float64{0.21, 0.79}))
		})

		It("should never resize the underlying buffer", func() {
			p := New(2, 0)
			p.SetBulk([]float64{1, 2, 3, 4})
			Expect(p.NumFluid()).To(Equal(2))
		})
	})

	It("should copy scalars and mixtures on CopyFrom without changing size", func() {
		src := New(2, 1)
		src.FrameCount = 5
		src.FrameLoopback = 2
		src.DemandMode = true
		src.Capacitance = 3
		src.Source = 4
		src.Energy = 300
		src.SetBulk([]float64{0.3, 0.7})
		src.SetTrace([]float64{0.001})

		dst := New(2, 1)
		dst.CopyFrom(src)

		Expect(dst.FrameCount).To(Equal(uint64(5)))
		Expect(dst.FrameLoopback).To(Equal(uint64(2)))
		Expect(dst.DemandMode).To(BeTrue())
		Expect(dst.MoleFractions()).To(Equal([]float64{0.3, 0.7}))
		Expect(dst.TcMoleFractions()).To(Equal([]float64{0.001}))
		Expect(dst.NumFluid()).To(Equal(2))
	})
})
