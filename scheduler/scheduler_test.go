package scheduler_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lsusim/instr"
	"github.com/sarchlab/lsusim/lsu"
	"github.com/sarchlab/lsusim/scheduler"
)

type fixedModel struct{ lq, sq int }

func (m fixedModel) LQSize() int { return m.lq }
func (m fixedModel) SQSize() int { return m.sq }

var _ = Describe("Scheduler", func() {
	It("runs a program end to end and leaves the queues empty", func() {
		reg := lsu.NewStaticRegistry()
		reg.Register(lsu.MemAccessCategory, 1, lsu.NewMemAccess(false, 0, 8))
		reg.Register(lsu.MemAccessCategory, 2, lsu.NewMemAccess(false, 16, 8))
		reg.Register(lsu.MemAccessCategory, 3, lsu.NewMemAccess(true, 64, 4))

		l := lsu.New(fixedModel{lq: 4, sq: 4}, 0, 0, lsu.WithMetadataRegistry(reg))
		s := scheduler.New(l)

		ops := []scheduler.Op{
			{Descriptor: instr.Descriptor{MayLoad: true, MetadataToken: 1}},
			{Descriptor: instr.Descriptor{MayLoad: true, MetadataToken: 2}},
			{Descriptor: instr.Descriptor{MayStore: true, MetadataToken: 3}, CyclesToExecute: 1},
		}

		ids := s.Run(ops)

		Expect(ids).To(HaveLen(3))
		Expect(ids[0]).To(Equal(ids[1]), "two plain loads with no intervening store share a group")
		Expect(ids[2]).NotTo(Equal(ids[0]))
		Expect(l.UsedLQ()).To(Equal(0))
		Expect(l.UsedSQ()).To(Equal(0))
	})

	It("traces lifecycle transitions when WithTrace is set", func() {
		l := lsu.New(fixedModel{lq: 4, sq: 4}, 0, 0)
		var buf bytes.Buffer
		s := scheduler.New(l, scheduler.WithTrace(&buf))

		s.Run([]scheduler.Op{{Descriptor: instr.Descriptor{MayLoad: true}}})

		Expect(buf.String()).To(ContainSubstring("dispatch:"))
		Expect(buf.String()).To(ContainSubstring("issued:"))
		Expect(buf.String()).To(ContainSubstring("executed:"))
		Expect(buf.String()).To(ContainSubstring("retired:"))
	})

	It("stalls the second load until the first retires when the LQ has only one slot", func() {
		l := lsu.New(fixedModel{lq: 1, sq: 1}, 0, 0)
		var buf bytes.Buffer
		s := scheduler.New(l, scheduler.WithTrace(&buf))

		ops := []scheduler.Op{
			{Descriptor: instr.Descriptor{MayLoad: true}},
			{Descriptor: instr.Descriptor{MayLoad: true}},
		}
		ids := s.Run(ops)

		Expect(ids).To(HaveLen(2))
		Expect(buf.String()).To(ContainSubstring("stall:"))
		// The first load has already fully retired (and its group erased)
		// by the time the second is admitted, so they land in distinct
		// groups instead of sharing one.
		Expect(ids[0]).NotTo(Equal(ids[1]))
		Expect(l.UsedLQ()).To(Equal(0))
	})
})
