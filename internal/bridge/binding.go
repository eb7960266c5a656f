// internal/bridge/binding.go
package bridge

import (
	"sync/atomic"

	"github.com/tamzrod/opcua-bridge/internal/image"
	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// binding ties one address-space node to one process-image slot. The
// scalar type is fixed for the binding's lifetime. The shadow cell holds
// the payload bits of the last published or written value; protocol reads
// consult only the shadow, so they never dereference live PLC memory and
// never need the scan lock.
//
// Bindings are kept in an arena keyed by an integer handle, and the
// handle (not a pointer) is what goes into the node context. A stale
// handle after a restart simply fails the lookup.
type binding struct {
	handle uint64
	nodeID ua.NodeID
	name   string
	typ    ua.TypeID
	cell   image.Cell
	shadow atomic.Uint64
}

// shadowValue reads the cached value. Safe from any thread.
func (bd *binding) shadowValue() ua.Variant {
	return ua.FromBits(bd.typ, bd.shadow.Load())
}

// setShadow replaces the cached value. Callers pair this with the image
// store under one scan-lock acquisition so the publisher can never see a
// half-applied write.
func (bd *binding) setShadow(v ua.Variant) {
	bd.shadow.Store(v.Bits())
}

// lookupBinding resolves a node-context handle to its binding, or nil.
func (b *Bridge) lookupBinding(handle uint64) *binding {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bindings[handle]
}

// destroyBindings empties the arena and returns how many bindings were
// torn down. Reported survivors would be a leak.
func (b *Bridge) destroyBindings() int {
	n := len(b.bindings)
	b.bindings = make(map[uint64]*binding)
	b.order = nil
	return n
}
