// Package scheduler provides a reference driver for the LSU: the
// out-of-scope "instruction scheduler" collaborator spec.md §1 and §5
// describe only by the call order it must honor. It exists to exercise
// the LSU end-to-end in tests and in cmd/lsudemo, not as a model of a
// real out-of-order scheduler (it dispatches and issues in program order
// and executes and retires each op as soon as its own CyclesToExecute
// countdown ends, so an op with a shorter countdown can retire before an
// older one; there is no speculation or rollback — spec.md's Non-goals).
package scheduler

import (
	"fmt"
	"io"

	"github.com/sarchlab/lsusim/instr"
	"github.com/sarchlab/lsusim/lsu"
)

// Op is one synthetic memory instruction to run through the LSU.
type Op struct {
	Descriptor instr.Descriptor

	// CyclesToExecute is how many CycleEvent ticks elapse between
	// Dispatch and OnInstructionExecuted for this op, purely for demo
	// pacing — the LSU itself has no notion of execution latency. At least
	// one tick always elapses, so 0 behaves like 1.
	CyclesToExecute int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTrace makes the scheduler write a line per lifecycle transition to w.
func WithTrace(w io.Writer) Option {
	return func(s *Scheduler) {
		s.trace = w
	}
}

// Scheduler drives a fixed instruction stream through an LSU in rounds. Each
// round first dispatches every op IsAvailable admits — so sibling loads
// queued up in the same round can still extend a common, not-yet-issued
// memory group instead of each being forced to retire before the next is
// even considered (spec.md §4.2's "current load group" stays open to new
// members until something makes it start executing) — then issues every op
// dispatched this round, then advances a single CycleEvent tick, executing
// and retiring every op whose CyclesToExecute countdown ends on that tick.
// Issuing only at the end of a round, not immediately
// after each Dispatch, is what keeps same-round siblings joinable: a group
// with an issued instruction reports IsExecuting (lsu/group.go), which
// Case B's dispatch policy (lsu/policy.go) treats as grounds to start a new
// group for the next load.
type Scheduler struct {
	lsu   *lsu.LSU
	trace io.Writer
}

// New creates a Scheduler driving l.
func New(l *lsu.LSU, opts ...Option) *Scheduler {
	s := &Scheduler{lsu: l}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// inFlight tracks one dispatched-but-not-yet-executed op.
type inFlight struct {
	index           int
	d               *instr.Descriptor
	groupID         instr.GroupID
	remainingCycles int
}

// Run dispatches, executes, and retires every op, returning the group ID
// each op was assigned, in the order ops was given.
func (s *Scheduler) Run(ops []Op) []instr.GroupID {
	ids := make([]instr.GroupID, len(ops))
	descs := make([]*instr.Descriptor, len(ops))
	for i := range ops {
		d := ops[i].Descriptor
		descs[i] = &d
	}

	var pending []*inFlight
	next := 0

	for next < len(ops) || len(pending) > 0 {
		var dispatchedThisRound []*inFlight

		for next < len(ops) {
			d := descs[next]
			verdict := s.lsu.IsAvailable(d)
			if verdict != lsu.Available {
				s.logf("stall: %s\n", verdict)
				break
			}

			gid := s.lsu.Dispatch(d)
			d.GroupID = gid
			ids[next] = gid
			s.logf("dispatch: op %d -> group %d\n", next, gid)

			f := &inFlight{
				index:           next,
				d:               d,
				groupID:         gid,
				remainingCycles: ops[next].CyclesToExecute,
			}
			pending = append(pending, f)
			dispatchedThisRound = append(dispatchedThisRound, f)
			next++
		}

		for _, f := range dispatchedThisRound {
			s.lsu.OnInstructionIssued(f.d)
			s.logf("issued: op %d (group %d)\n", f.index, f.groupID)
		}

		if next >= len(ops) && len(pending) == 0 {
			break
		}

		s.lsu.CycleEvent()

		still := pending[:0]
		for _, f := range pending {
			if f.remainingCycles > 0 {
				f.remainingCycles--
			}
			if f.remainingCycles > 0 {
				still = append(still, f)
				continue
			}

			s.lsu.OnInstructionExecuted(f.d)
			s.logf("executed: op %d (group %d)\n", f.index, f.groupID)

			s.lsu.OnInstructionRetired(f.d)
			s.logf("retired: op %d (group %d)\n", f.index, f.groupID)
		}
		pending = still
	}

	return ids
}

func (s *Scheduler) logf(format string, args ...interface{}) {
	if s.trace == nil {
		return
	}
	fmt.Fprintf(s.trace, format, args...)
}
