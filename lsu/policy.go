package lsu

import (
	"fmt"

	"github.com/sarchlab/lsusim/instr"
)

// Availability is the discriminated result of IsAvailable: queue-full
// conditions are expected, recoverable stalls, never errors (spec.md §7).
type Availability int

const (
	// Available means dispatch may proceed.
	Available Availability = iota
	// LoadQueueFull means an LQ slot is required but none is free.
	LoadQueueFull
	// StoreQueueFull means an SQ slot is required but none is free.
	StoreQueueFull
)

// String implements fmt.Stringer for diagnostics.
func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case LoadQueueFull:
		return "load queue full"
	case StoreQueueFull:
		return "store queue full"
	default:
		return "unknown"
	}
}

// IsAvailable is the pre-dispatch check the scheduler must honor before
// calling Dispatch (spec.md §4.4).
func (l *LSU) IsAvailable(d *instr.Descriptor) Availability {
	ma := l.MemAccessMD(d)

	if d.MayLoad && l.IsLQFull() {
		return LoadQueueFull
	}
	if isStore(d, ma) && l.IsSQFull() {
		return StoreQueueFull
	}
	return Available
}

// maxGroupID returns the numerically larger of two group IDs. Group IDs
// are allocated in strictly increasing dispatch order, so "larger" means
// "younger" here, matching spec.md's max(current_load, current_load_barrier).
func maxGroupID(a, b instr.GroupID) instr.GroupID {
	if a > b {
		return a
	}
	return b
}

// Dispatch is the LSU policy's dispatch decision procedure (spec.md §4.4):
// it resolves store-ness, acquires queue slots, and either starts a new
// memory group or extends the current load group, wiring the correct
// dependency edges to older groups along the way. It returns the group ID
// the caller must stamp onto the instruction.
func (l *LSU) Dispatch(d *instr.Descriptor) instr.GroupID {
	ma := l.MemAccessMD(d)
	store := isStore(d, ma)

	if !d.MayLoad && !store {
		panic(fmt.Sprintf("lsu: dispatch of a non-memory instruction (may_load=%v may_store=%v)",
			d.MayLoad, d.MayStore))
	}

	if d.MayLoad {
		l.AcquireLQSlot()
	}
	if store {
		l.AcquireSQSlot()
	}

	if store {
		return l.dispatchStore(d, ma)
	}
	return l.dispatchLoad(d, ma)
}

// dispatchStore implements Case A: a store always starts a new group.
func (l *LSU) dispatchStore(d *instr.Descriptor, ma *MemAccess) instr.GroupID {
	n := l.CreateMemoryGroup()
	g := l.Group(n)
	g.AddInstruction()
	g.AddMemAccess(ma)

	// Step 2: a store cannot pass a prior load or load barrier.
	dom := maxGroupID(l.currentLoad, l.currentLoadBarrier)
	if dom != instr.NoGroup {
		l.Group(dom).AddSuccessor(g, !l.NoAlias(dom, ma))
	}

	// Step 3: structural edge from the current store barrier.
	if l.currentStoreBarrier != instr.NoGroup {
		l.Group(l.currentStoreBarrier).AddSuccessor(g, true)
	}

	// Step 4: edge from the current store, unless it is the same group
	// already wired in step 3.
	if l.currentStore != instr.NoGroup && l.currentStore != l.currentStoreBarrier {
		l.Group(l.currentStore).AddSuccessor(g, !l.NoAlias(l.currentStore, ma))
	}

	l.currentStore = n
	if d.IsStoreBarrier {
		l.currentStoreBarrier = n
	}
	if d.MayLoad {
		l.currentLoad = n
		if d.IsLoadBarrier {
			l.currentLoadBarrier = n
		}
	}

	return n
}

// dispatchLoad implements Case B: a pure load either extends the current
// load group or starts a new one.
func (l *LSU) dispatchLoad(d *instr.Descriptor, ma *MemAccess) instr.GroupID {
	dom := maxGroupID(l.currentLoad, l.currentLoadBarrier)

	newGroupRequired := d.IsLoadBarrier ||
		dom == instr.NoGroup ||
		l.currentLoadBarrier == dom ||
		dom <= l.currentStore ||
		(dom != instr.NoGroup && l.Group(dom).IsExecuting())

	if !newGroupRequired {
		g := l.Group(l.currentLoad)
		g.AddInstruction()
		g.AddMemAccess(ma)
		return l.currentLoad
	}

	n := l.CreateMemoryGroup()
	g := l.Group(n)
	g.AddInstruction()
	g.AddMemAccess(ma)

	if l.currentStore != instr.NoGroup && !l.NoAlias(l.currentStore, ma) {
		l.Group(l.currentStore).AddSuccessor(g, true)
	}

	if d.IsLoadBarrier && dom != instr.NoGroup {
		l.Group(dom).AddSuccessor(g, true)
	} else if l.currentLoadBarrier != instr.NoGroup {
		l.Group(l.currentLoadBarrier).AddSuccessor(g, true)
	}

	l.currentLoad = n
	if d.IsLoadBarrier {
		l.currentLoadBarrier = n
	}

	return n
}

// OnInstructionExecuted runs the base-class bookkeeping and then, if that
// erased d's group, clears any of the four current-pointers that still
// referenced it, so the next dispatch starts a fresh chain instead of
// wiring edges to a dead group.
func (l *LSU) OnInstructionExecuted(d *instr.Descriptor) {
	l.onInstructionExecutedBase(d)

	gid := d.GroupID
	if l.groupLive(gid) {
		return
	}

	if l.currentLoad == gid {
		l.currentLoad = instr.NoGroup
	}
	if l.currentStore == gid {
		l.currentStore = instr.NoGroup
	}
	if l.currentLoadBarrier == gid {
		l.currentLoadBarrier = instr.NoGroup
	}
	if l.currentStoreBarrier == gid {
		l.currentStoreBarrier = instr.NoGroup
	}
}
