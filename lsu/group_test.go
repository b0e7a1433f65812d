package lsu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lsusim/lsu"
)

type testModel struct {
	lq, sq int
}

func (m testModel) LQSize() int { return m.lq }
func (m testModel) SQSize() int { return m.sq }

var _ = Describe("MemoryGroup", func() {
	var l *lsu.LSU

	BeforeEach(func() {
		l = lsu.New(testModel{lq: 8, sq: 8}, 0, 0)
	})

	It("starts with no predecessors and is ready", func() {
		id := l.CreateMemoryGroup()
		g := l.Group(id)

		Expect(g.NumPredecessors()).To(Equal(0))
		Expect(g.IsReady()).To(BeTrue())
		Expect(g.IsExecuting()).To(BeFalse())
		Expect(g.IsExecuted()).To(BeFalse())
	})

	It("becomes ready only once every predecessor has executed", func() {
		predID := l.CreateMemoryGroup()
		succID := l.CreateMemoryGroup()
		pred := l.Group(predID)
		succ := l.Group(succID)

		pred.AddInstruction()
		succ.AddInstruction()
		pred.AddSuccessor(succ, true)

		Expect(succ.NumPredecessors()).To(Equal(1))
		Expect(succ.IsReady()).To(BeFalse())

		pred.OnInstructionIssued()
		pred.OnInstructionExecuted()

		Expect(succ.NumExecutedPredecessors()).To(Equal(1))
		Expect(succ.IsReady()).To(BeTrue())
	})

	It("is executing once issued but not yet executed", func() {
		id := l.CreateMemoryGroup()
		g := l.Group(id)
		g.AddInstruction()
		g.AddInstruction()

		g.OnInstructionIssued()
		Expect(g.IsExecuting()).To(BeTrue())
		Expect(g.IsExecuted()).To(BeFalse())

		g.OnInstructionExecuted()
		Expect(g.IsExecuting()).To(BeTrue(), "one instruction is still pending")

		g.OnInstructionIssued()
		g.OnInstructionExecuted()
		Expect(g.IsExecuting()).To(BeFalse())
		Expect(g.IsExecuted()).To(BeTrue())
	})

	It("propagates executed-predecessor to every successor once the group fully executes", func() {
		predID := l.CreateMemoryGroup()
		succAID := l.CreateMemoryGroup()
		succBID := l.CreateMemoryGroup()
		pred := l.Group(predID)

		pred.AddInstruction()
		pred.AddInstruction()
		l.Group(succAID).AddInstruction()
		l.Group(succBID).AddInstruction()
		pred.AddSuccessor(l.Group(succAID), false)
		pred.AddSuccessor(l.Group(succBID), true)

		pred.OnInstructionIssued()
		pred.OnInstructionExecuted()
		Expect(l.Group(succAID).NumExecutedPredecessors()).To(Equal(0),
			"pred has a second, unexecuted instruction")

		pred.OnInstructionIssued()
		pred.OnInstructionExecuted()
		Expect(l.Group(succAID).NumExecutedPredecessors()).To(Equal(1))
		Expect(l.Group(succBID).NumExecutedPredecessors()).To(Equal(1))
	})

	It("does not change dependency state on CycleEvent", func() {
		id := l.CreateMemoryGroup()
		g := l.Group(id)
		g.AddInstruction()

		Expect(func() { g.CycleEvent() }).NotTo(Panic())
		Expect(g.IsReady()).To(BeTrue())
	})
})
