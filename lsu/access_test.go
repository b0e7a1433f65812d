package lsu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lsusim/lsu"
)

var _ = Describe("MemAccess", func() {
	Describe("unbundled access", func() {
		It("reports its own interval as the extended interval", func() {
			ma := lsu.NewMemAccess(false, 0x100, 8)
			Expect(ma.ExtendedStart()).To(Equal(uint64(0x100)))
			Expect(ma.ExtendedEnd()).To(Equal(uint64(0x108)))
		})
	})

	Describe("Append", func() {
		It("widens the extended interval to the left", func() {
			ma := lsu.NewMemAccess(false, 0x100, 8)
			ma.Append(false, 0x80, 4)

			Expect(ma.ExtendedStart()).To(Equal(uint64(0x80)))
			Expect(ma.ExtendedEnd()).To(Equal(uint64(0x108)))
		})

		It("widens the extended interval to the right", func() {
			ma := lsu.NewMemAccess(false, 0x100, 8)
			ma.Append(false, 0x200, 16)

			Expect(ma.ExtendedStart()).To(Equal(uint64(0x100)))
			Expect(ma.ExtendedEnd()).To(Equal(uint64(0x210)))
		})

		It("keeps precise per-sub-access intervals for aliasing", func() {
			// Bundle spans [0x100, 0x210) as a union, but the two
			// sub-accesses themselves don't touch [0x180, 0x190).
			a := lsu.NewMemAccess(false, 0x100, 8)
			a.Append(false, 0x200, 16)

			probe := lsu.NewMemAccess(true, 0x180, 8)

			Expect(a.Aliases(probe)).To(BeFalse(),
				"a naive union-interval test would wrongly report an alias here")
		})
	})

	Describe("Aliases", func() {
		It("reports true for overlapping ranges", func() {
			a := lsu.NewMemAccess(false, 0x100, 8)
			b := lsu.NewMemAccess(true, 0x104, 8)
			Expect(a.Aliases(b)).To(BeTrue())
			Expect(b.Aliases(a)).To(BeTrue())
		})

		It("reports false for disjoint ranges", func() {
			a := lsu.NewMemAccess(false, 0x100, 8)
			b := lsu.NewMemAccess(true, 0x200, 8)
			Expect(a.Aliases(b)).To(BeFalse())
		})

		It("reports false when either side is nil", func() {
			a := lsu.NewMemAccess(false, 0x100, 8)
			Expect(a.Aliases(nil)).To(BeFalse())

			var none *lsu.MemAccess
			Expect(none.Aliases(a)).To(BeFalse())
		})

		It("treats adjacent, non-overlapping ranges as disjoint", func() {
			a := lsu.NewMemAccess(false, 0x100, 8) // [0x100, 0x108)
			b := lsu.NewMemAccess(true, 0x108, 8)  // [0x108, 0x110)
			Expect(a.Aliases(b)).To(BeFalse())
		})
	})
})
