// Package lsu implements the load/store unit of an out-of-order
// microarchitectural simulator: the load/store queue accounting, the
// memory-group dependency DAG, and the dispatch policy that wires new
// instructions into it.
package lsu

// subAccess is one access bundled into a MemAccess. The first sub-access
// is always the original (Addr, Size) the MemAccess was constructed with.
type subAccess struct {
	isStore bool
	addr    uint64
	size    uint32
}

// MemAccess (MA) describes the byte range touched by a memory instruction
// and whether it stores. A single instruction can bundle more than one
// sub-access (e.g. LDP/STP-style compound ops); Append records each
// sub-access individually so aliasing stays precise, while also widening
// an extended interval that covers all of them for cheap coarse pruning.
type MemAccess struct {
	IsStore bool
	Addr    uint64
	Size    uint32

	bundled      bool
	extendedAddr uint64
	extendedSize uint32
	subAccesses  []subAccess
}

// NewMemAccess constructs a single, unbundled memory access.
func NewMemAccess(isStore bool, addr uint64, size uint32) *MemAccess {
	return &MemAccess{
		IsStore: isStore,
		Addr:    addr,
		Size:    size,
	}
}

// Append extends the bundle with another sub-access of the same
// instruction, widening the extended interval to cover it. The first call
// lazily seeds the bundle with the access's own (Addr, Size).
func (m *MemAccess) Append(isStore bool, addr uint64, size uint32) {
	if !m.bundled {
		m.bundled = true
		m.extendedAddr = m.Addr
		m.extendedSize = m.Size
		m.subAccesses = append(m.subAccesses, subAccess{
			isStore: m.IsStore,
			addr:    m.Addr,
			size:    m.Size,
		})
	}

	m.subAccesses = append(m.subAccesses, subAccess{isStore: isStore, addr: addr, size: size})

	// Recompute the union interval's right edge before possibly moving
	// the left edge, so a leftward widening doesn't silently shrink the
	// interval's known right edge.
	rightEdge := m.extendedAddr + uint64(m.extendedSize)
	if newEnd := addr + uint64(size); newEnd > rightEdge {
		rightEdge = newEnd
	}
	if addr < m.extendedAddr {
		m.extendedAddr = addr
	}
	m.extendedSize = uint32(rightEdge - m.extendedAddr)
}

// ExtendedStart returns the start of the bundled interval, or Addr if the
// access is not bundled.
func (m *MemAccess) ExtendedStart() uint64 {
	if m.bundled {
		return m.extendedAddr
	}
	return m.Addr
}

// ExtendedEnd returns the end (exclusive) of the bundled interval, or
// Addr+Size if the access is not bundled.
func (m *MemAccess) ExtendedEnd() uint64 {
	if m.bundled {
		return m.extendedAddr + uint64(m.extendedSize)
	}
	return m.Addr + uint64(m.Size)
}

// everySubAccess yields every sub-access of m, or the access itself when
// unbundled.
func (m *MemAccess) everySubAccess() []subAccess {
	if m.bundled {
		return m.subAccesses
	}
	return []subAccess{{isStore: m.IsStore, addr: m.Addr, size: m.Size}}
}

// intervalsOverlap reports whether [a1,e1) and [a2,e2) overlap.
func intervalsOverlap(a1, e1, a2, e2 uint64) bool {
	return a1 < e2 && a2 < e1
}

// Aliases reports whether any sub-access of m overlaps any sub-access of
// other. This is the precise, per-sub-access test: two bundled accesses
// whose union intervals overlap may still not alias if their individual
// sub-accesses don't.
func (m *MemAccess) Aliases(other *MemAccess) bool {
	if m == nil || other == nil {
		return false
	}

	for _, a := range m.everySubAccess() {
		aEnd := a.addr + uint64(a.size)
		for _, b := range other.everySubAccess() {
			bEnd := b.addr + uint64(b.size)
			if intervalsOverlap(a.addr, aEnd, b.addr, bEnd) {
				return true
			}
		}
	}

	return false
}
