package lsu

import (
	"fmt"
	"io"
	"sort"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/lsusim/instr"
)

// unboundedBufferCapacity backs an LQ/SQ that spec.md declares
// "unbounded" (size 0). sim.Buffer requires a positive capacity, so an
// unbounded queue is modeled as a buffer large enough never to fill in
// practice; IsLQFull/IsSQFull still report "never full" directly off the
// configured size, not off the buffer's capacity.
const unboundedBufferCapacity = 1 << 30

// ProcessorModel is the external processor-model descriptor spec.md §1
// and §6 treat as a contract: the LSU reads only its queue sizes.
type ProcessorModel interface {
	LQSize() int
	SQSize() int
}

// Option configures an LSU at construction time.
type Option func(*LSU)

// WithAssumeNoAlias sets the fallback aliasing policy consulted only when
// no MemAccess metadata is available for a group/access pair.
func WithAssumeNoAlias(assume bool) Option {
	return func(l *LSU) {
		l.assumeNoAlias = assume
	}
}

// WithMetadataRegistry attaches the optional metadata registry used to
// resolve instructions' MemAccess.
func WithMetadataRegistry(reg MetadataRegistry) Option {
	return func(l *LSU) {
		l.registry = reg
	}
}

// LSU owns the live memory-group table, the LQ/SQ occupancy counters, and
// the optional alias-metadata lookup (spec.md §4.3). It is the
// bookkeeping half of the load/store unit; dispatch policy lives in
// policy.go.
type LSU struct {
	assumeNoAlias bool
	registry      MetadataRegistry

	lqSize int // 0 means unbounded
	sqSize int // 0 means unbounded
	lq     sim.Buffer
	sq     sim.Buffer

	groups      map[instr.GroupID]*MemoryGroup
	nextGroupID instr.GroupID

	currentLoad         instr.GroupID
	currentStore        instr.GroupID
	currentLoadBarrier  instr.GroupID
	currentStoreBarrier instr.GroupID

	// Debug gates Dump's output. It has no effect on any LSU state.
	Debug bool
}

// New constructs an LSU. lqSizeOverride/sqSizeOverride take precedence
// over model's sizes when non-zero; zero on both sides means unbounded.
func New(model ProcessorModel, lqSizeOverride, sqSizeOverride int, opts ...Option) *LSU {
	lqSize := lqSizeOverride
	if lqSize == 0 && model != nil {
		lqSize = model.LQSize()
	}
	sqSize := sqSizeOverride
	if sqSize == 0 && model != nil {
		sqSize = model.SQSize()
	}

	l := &LSU{
		lqSize:      lqSize,
		sqSize:      sqSize,
		lq:          sim.NewBuffer("LSU.LQ", bufferCapacity(lqSize)),
		sq:          sim.NewBuffer("LSU.SQ", bufferCapacity(sqSize)),
		groups:      make(map[instr.GroupID]*MemoryGroup),
		nextGroupID: 1,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func bufferCapacity(size int) int {
	if size == 0 {
		return unboundedBufferCapacity
	}
	return size
}

// CreateMemoryGroup allocates a new, empty memory group and returns its ID.
func (l *LSU) CreateMemoryGroup() instr.GroupID {
	id := l.nextGroupID
	l.nextGroupID++
	l.groups[id] = newMemoryGroup(id)
	return id
}

// Group returns the live group for id, or panics: a caller asking for a
// group ID it was never handed, or one already erased, is a contract
// violation (spec.md §7).
func (l *LSU) Group(id instr.GroupID) *MemoryGroup {
	g, ok := l.groups[id]
	if !ok {
		panic(fmt.Sprintf("lsu: unknown or already-erased group %d", id))
	}
	return g
}

// groupLive reports whether id still has a live group, without panicking.
func (l *LSU) groupLive(id instr.GroupID) bool {
	_, ok := l.groups[id]
	return ok
}

// AcquireLQSlot reserves one load-queue slot.
func (l *LSU) AcquireLQSlot() {
	if !l.lq.CanPush() {
		panic("lsu: acquireLQSlot on a full load queue")
	}
	l.lq.Push(struct{}{})
}

// AcquireSQSlot reserves one store-queue slot.
func (l *LSU) AcquireSQSlot() {
	if !l.sq.CanPush() {
		panic("lsu: acquireSQSlot on a full store queue")
	}
	l.sq.Push(struct{}{})
}

// ReleaseLQSlot frees one load-queue slot.
func (l *LSU) ReleaseLQSlot() {
	if l.lq.Size() == 0 {
		panic("lsu: releaseLQSlot with used_lq already zero")
	}
	l.lq.Pop()
}

// ReleaseSQSlot frees one store-queue slot.
func (l *LSU) ReleaseSQSlot() {
	if l.sq.Size() == 0 {
		panic("lsu: releaseSQSlot with used_sq already zero")
	}
	l.sq.Pop()
}

// IsLQFull reports whether the load queue is full. A zero LQ size means
// unbounded, so it is never full.
func (l *LSU) IsLQFull() bool {
	return l.lqSize != 0 && l.lq.Size() == l.lqSize
}

// IsSQFull reports whether the store queue is full.
func (l *LSU) IsSQFull() bool {
	return l.sqSize != 0 && l.sq.Size() == l.sqSize
}

// UsedLQ returns the number of occupied load-queue slots.
func (l *LSU) UsedLQ() int { return l.lq.Size() }

// UsedSQ returns the number of occupied store-queue slots.
func (l *LSU) UsedSQ() int { return l.sq.Size() }

// MemAccessMD resolves d's MemAccess through the attached metadata
// registry, if any. It returns nil if there is no registry, or the
// instruction carries no metadata token, or nothing is registered under
// it.
func (l *LSU) MemAccessMD(d *instr.Descriptor) *MemAccess {
	if l.registry == nil || d.MetadataToken == 0 {
		return nil
	}
	ma, ok := l.registry.Lookup(MemAccessCategory, d.MetadataToken)
	if !ok {
		return nil
	}
	return ma
}

// NoAlias reports whether gid's group provably does not alias ma. With ma
// present the algebraic interval test is authoritative; with ma absent,
// the assumeNoAlias policy flag is consulted instead (spec.md §9 Open
// Question: this applies identically whether gid's dominator is an
// ordinary group or a barrier).
func (l *LSU) NoAlias(gid instr.GroupID, ma *MemAccess) bool {
	if ma != nil {
		return !l.Group(gid).Aliases(ma)
	}
	return l.assumeNoAlias
}

// isStore resolves an instruction's store-ness: may_store, or metadata
// reclassifying it as a store (spec.md §4.4).
func isStore(d *instr.Descriptor, ma *MemAccess) bool {
	return d.MayStore || (ma != nil && ma.IsStore)
}

// CycleEvent advances every live group by one simulated cycle.
func (l *LSU) CycleEvent() {
	for _, g := range l.groups {
		g.CycleEvent()
	}
}

// OnInstructionIssued records that d has issued for execution, forwarding
// to its group. The scheduler calls this once an op leaves dispatch and
// begins executing, before OnInstructionExecuted (spec.md §4.2's
// on_instruction_issued).
func (l *LSU) OnInstructionIssued(d *instr.Descriptor) {
	l.Group(d.GroupID).OnInstructionIssued()
}

// onInstructionExecutedBase forwards to d's group and erases it from the
// table once it is fully executed. The policy-layer OnInstructionExecuted
// (policy.go) builds on this by also clearing any current-pointer that
// referenced an erased group.
func (l *LSU) onInstructionExecutedBase(d *instr.Descriptor) {
	g := l.Group(d.GroupID)
	g.OnInstructionExecuted()
	if g.IsExecuted() {
		delete(l.groups, d.GroupID)
	}
}

// OnInstructionRetired releases the LQ and/or SQ slots d acquired at
// dispatch.
func (l *LSU) OnInstructionRetired(d *instr.Descriptor) {
	ma := l.MemAccessMD(d)
	if d.MayLoad {
		l.ReleaseLQSlot()
	}
	if isStore(d, ma) {
		l.ReleaseSQSlot()
	}
}

// Snapshot is a point-in-time, read-only view of the LSU's bookkeeping
// state, used for debug dumps and for tests asserting on internal shape
// without reaching into private fields.
type Snapshot struct {
	UsedLQ, LQSize int
	UsedSQ, SQSize int

	CurrentLoad         instr.GroupID
	CurrentStore        instr.GroupID
	CurrentLoadBarrier  instr.GroupID
	CurrentStoreBarrier instr.GroupID

	Groups []GroupSnapshot
}

// GroupSnapshot is the observable state of a single live MemoryGroup.
type GroupSnapshot struct {
	ID                      instr.GroupID
	NumInstructions         int
	NumIssued               int
	NumExecuted             int
	NumPredecessors         int
	NumExecutedPredecessors int
}

// Snapshot captures the LSU's current bookkeeping state.
func (l *LSU) Snapshot() Snapshot {
	s := Snapshot{
		UsedLQ:              l.lq.Size(),
		LQSize:              l.lqSize,
		UsedSQ:              l.sq.Size(),
		SQSize:              l.sqSize,
		CurrentLoad:         l.currentLoad,
		CurrentStore:        l.currentStore,
		CurrentLoadBarrier:  l.currentLoadBarrier,
		CurrentStoreBarrier: l.currentStoreBarrier,
	}

	ids := make([]instr.GroupID, 0, len(l.groups))
	for id := range l.groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		g := l.groups[id]
		s.Groups = append(s.Groups, GroupSnapshot{
			ID:                      id,
			NumInstructions:         g.numInstructions,
			NumIssued:               g.numIssued,
			NumExecuted:             g.numExecuted,
			NumPredecessors:         g.numPredecessors,
			NumExecutedPredecessors: g.numExecutedPredecessors,
		})
	}

	return s
}

// Dump writes a human-readable snapshot to w when l.Debug is set. It is
// purely observational and never changes LSU state.
func (l *LSU) Dump(w io.Writer) {
	if !l.Debug {
		return
	}

	s := l.Snapshot()
	fmt.Fprintf(w, "lsu: lq=%d/%d sq=%d/%d cur(load=%d store=%d ldb=%d stb=%d)\n",
		s.UsedLQ, s.LQSize, s.UsedSQ, s.SQSize,
		s.CurrentLoad, s.CurrentStore, s.CurrentLoadBarrier, s.CurrentStoreBarrier)
	for _, g := range s.Groups {
		fmt.Fprintf(w, "  group %d: inst=%d issued=%d executed=%d preds=%d/%d\n",
			g.ID, g.NumInstructions, g.NumIssued, g.NumExecuted,
			g.NumExecutedPredecessors, g.NumPredecessors)
	}
}
