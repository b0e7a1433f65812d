// Package instr defines the minimal memory-instruction contract the LSU
// consults. The full instruction set (decoder, register file, ALU) is an
// external collaborator of the LSU and out of scope here: spec.md treats
// the instruction descriptor as something the scheduler owns and the LSU
// only reads a handful of flags off of.
package instr

// GroupID identifies a memory group. The zero value is the sentinel
// "none" used by the four current-pointers before anything has dispatched.
type GroupID uint64

// NoGroup is the sentinel "no group" ID.
const NoGroup GroupID = 0

// Descriptor is the subset of an in-flight instruction's state the LSU
// reads and writes. A real simulator stamps this onto a richer
// instruction record; the LSU only ever touches these fields.
type Descriptor struct {
	// MayLoad is true if the instruction's static encoding can perform a
	// load (independent of any metadata-registry reclassification).
	MayLoad bool

	// MayStore is true if the instruction's static encoding can perform a
	// store (independent of any metadata-registry reclassification).
	MayStore bool

	// IsLoadBarrier marks an instruction that serializes all older loads
	// with respect to it.
	IsLoadBarrier bool

	// IsStoreBarrier marks an instruction that serializes all older
	// stores with respect to it.
	IsStoreBarrier bool

	// MetadataToken looks up an optional MemAccess in the attached
	// MetadataRegistry. Zero means "no metadata".
	MetadataToken uint64

	// GroupID is stamped by the scheduler with the value dispatch
	// returned, so OnInstructionExecuted/OnInstructionRetired can find
	// the owning group again.
	GroupID GroupID
}
