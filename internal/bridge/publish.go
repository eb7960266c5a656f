// internal/bridge/publish.go
package bridge

import (
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// Publish is called by the scan engine once per cycle, after the program
// body ran. It snapshots the image into the shadow cache under the scan
// lock, releases, and only then pushes the values into the stack's node
// store. The stack is never entered while the scan lock is held.
//
// When the bridge is not RUNNING the call returns immediately.
func (b *Bridge) Publish() {
	if !b.running.Load() {
		return
	}

	b.mu.Lock()
	if b.state != StateRunning {
		b.mu.Unlock()
		return
	}
	inst := b.inst
	snap := make([]*binding, 0, len(b.order))
	for _, h := range b.order {
		if bd := b.bindings[h]; bd != nil {
			snap = append(snap, bd)
		}
	}
	b.mu.Unlock()

	type update struct {
		id ua.NodeID
		v  ua.Variant
	}
	updates := make([]update, 0, len(snap))

	b.img.Lock()
	for _, bd := range snap {
		v := bd.cell.Load()
		bd.setShadow(v)
		updates = append(updates, update{id: bd.nodeID, v: v})
	}
	b.img.Unlock()

	for _, u := range updates {
		if st := inst.WriteValue(u.id, u.v); !st.IsGood() {
			b.log.WithFields(logrus.Fields{
				"node":   u.id.String(),
				"status": st.String(),
			}).Warn("failed to update node value")
		}
	}
}
