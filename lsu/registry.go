package lsu

// MemAccessCategory is the metadata-registry category the LSU looks
// entries up under. The registry may hold entries for other consumers
// under other categories; the LSU only ever reads its own.
const MemAccessCategory = "lsu.mem_access"

// MetadataRegistry is the external, read-only metadata registry
// collaborator spec.md §1 and §4.3 describe: a lookup from an
// instruction's opaque metadata token to optional per-instruction data,
// namespaced by category. The LSU never writes to it.
type MetadataRegistry interface {
	// Lookup returns the MemAccess registered for token under category,
	// and whether one was found.
	Lookup(category string, token uint64) (*MemAccess, bool)
}

// StaticRegistry is a simple map-backed MetadataRegistry used by tests
// and the lsudemo harness in place of a real simulator's metadata
// infrastructure.
type StaticRegistry struct {
	entries map[string]map[uint64]*MemAccess
}

// NewStaticRegistry creates an empty StaticRegistry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		entries: make(map[string]map[uint64]*MemAccess),
	}
}

// Register associates ma with token under category.
func (r *StaticRegistry) Register(category string, token uint64, ma *MemAccess) {
	byToken, ok := r.entries[category]
	if !ok {
		byToken = make(map[uint64]*MemAccess)
		r.entries[category] = byToken
	}
	byToken[token] = ma
}

// Lookup implements MetadataRegistry.
func (r *StaticRegistry) Lookup(category string, token uint64) (*MemAccess, bool) {
	byToken, ok := r.entries[category]
	if !ok {
		return nil, false
	}
	ma, ok := byToken[token]
	return ma, ok
}
