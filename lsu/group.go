package lsu

import "github.com/sarchlab/lsusim/instr"

// successorEdge is one outgoing dependency edge of a MemoryGroup.
type successorEdge struct {
	target           *MemoryGroup
	isDataDependency bool
}

// MemoryGroup (MG) is a node in the LSU's dependency DAG: one or more
// concurrently-dispatched memory instructions that share ordering
// constraints with older groups. Groups accumulate instructions only
// while they are the current load group (spec.md §4.2); a store's group
// always has exactly one instruction.
type MemoryGroup struct {
	id instr.GroupID

	accesses []*MemAccess

	numInstructions int
	numIssued       int
	numExecuted     int

	numPredecessors         int
	numExecutedPredecessors int

	successors []successorEdge

	// propagated guards against double-incrementing successors'
	// executed-predecessor counters if OnInstructionExecuted is ever
	// called once more after the group already reached "executed".
	propagated bool

	// cyclesAlive is a deferred-action tick counter maintained purely for
	// observability; the dependency DAG never reads it.
	cyclesAlive uint64
}

func newMemoryGroup(id instr.GroupID) *MemoryGroup {
	return &MemoryGroup{id: id}
}

// ID returns the group's identifier.
func (g *MemoryGroup) ID() instr.GroupID {
	return g.id
}

// AddInstruction records that one more instruction has joined this group.
func (g *MemoryGroup) AddInstruction() {
	g.numInstructions++
}

// AddMemAccess appends ma to the group's bundle if non-nil.
func (g *MemoryGroup) AddMemAccess(ma *MemAccess) {
	if ma != nil {
		g.accesses = append(g.accesses, ma)
	}
}

// AddSuccessor wires g as a predecessor of succ. isDataDependency
// distinguishes a true aliasing-driven data dependency from a pure
// structural ordering edge (e.g. a barrier).
func (g *MemoryGroup) AddSuccessor(succ *MemoryGroup, isDataDependency bool) {
	g.successors = append(g.successors, successorEdge{target: succ, isDataDependency: isDataDependency})
	succ.numPredecessors++
}

// NumPredecessors returns the number of predecessor edges pointing at g.
func (g *MemoryGroup) NumPredecessors() int {
	return g.numPredecessors
}

// NumDataDependencySuccessors returns how many of g's outgoing edges carry
// a true aliasing-driven data dependency, as opposed to a pure structural
// ordering edge. Tests use this to assert on alias elision directly rather
// than only on edge counts.
func (g *MemoryGroup) NumDataDependencySuccessors() int {
	n := 0
	for _, edge := range g.successors {
		if edge.isDataDependency {
			n++
		}
	}
	return n
}

// NumSuccessors returns the total number of outgoing edges from g.
func (g *MemoryGroup) NumSuccessors() int {
	return len(g.successors)
}

// NumExecutedPredecessors returns how many of g's predecessors have fully
// executed.
func (g *MemoryGroup) NumExecutedPredecessors() int {
	return g.numExecutedPredecessors
}

// NumInstructions returns how many instructions belong to g.
func (g *MemoryGroup) NumInstructions() int {
	return g.numInstructions
}

// Aliases reports whether any MemAccess bundled in g overlaps ma.
func (g *MemoryGroup) Aliases(ma *MemAccess) bool {
	if ma == nil {
		return false
	}
	for _, own := range g.accesses {
		if own.Aliases(ma) {
			return true
		}
	}
	return false
}

// IsReady reports whether every predecessor of g has fully executed.
func (g *MemoryGroup) IsReady() bool {
	return g.numExecutedPredecessors == g.numPredecessors
}

// IsExecuting reports whether g has started executing (at least one
// instruction issued) but has not yet fully executed.
func (g *MemoryGroup) IsExecuting() bool {
	return g.numIssued > 0 && g.numExecuted < g.numInstructions
}

// IsExecuted reports whether every instruction in g has executed.
func (g *MemoryGroup) IsExecuted() bool {
	return g.numInstructions > 0 && g.numExecuted == g.numInstructions
}

// OnInstructionIssued records that one of g's instructions has issued.
func (g *MemoryGroup) OnInstructionIssued() {
	g.numIssued++
}

// OnInstructionExecuted records that one of g's instructions has executed.
// When this makes g fully executed, every successor's executed-predecessor
// counter is incremented exactly once.
func (g *MemoryGroup) OnInstructionExecuted() {
	g.numExecuted++

	if g.IsExecuted() && !g.propagated {
		g.propagated = true
		for _, edge := range g.successors {
			edge.target.numExecutedPredecessors++
		}
	}
}

// CycleEvent advances g's internal, dependency-independent counters by one
// simulated cycle.
func (g *MemoryGroup) CycleEvent() {
	g.cyclesAlive++
}
