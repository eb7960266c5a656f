// internal/stack/memstack/client.go
package memstack

import (
	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// In-process client surface. These calls follow the same path a session
// thread would take through a real stack: reads go through the node's
// OnRead hook, writes are type-checked against the declared data type,
// offered to OnWrite, and committed to the node store only on Good.

// NodeInfo is the browse-visible description of one node.
type NodeInfo struct {
	ID          ua.NodeID
	Parent      ua.NodeID
	BrowseName  string
	DisplayName string
	Variable    bool
	DataType    ua.TypeID
}

// Node returns browse info for one node.
func (s *Server) Node(id ua.NodeID) (NodeInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return NodeInfo{}, false
	}
	return NodeInfo{
		ID:          n.id,
		Parent:      n.parent,
		BrowseName:  n.browse,
		DisplayName: n.display,
		Variable:    n.variable,
		DataType:    n.dataType,
	}, true
}

// Children lists the nodes whose parent is the given node.
func (s *Server) Children(parent ua.NodeID) []NodeInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []NodeInfo
	for _, n := range s.nodes {
		if n.parent == parent && n.id != parent {
			out = append(out, NodeInfo{
				ID:          n.id,
				Parent:      n.parent,
				BrowseName:  n.browse,
				DisplayName: n.display,
				Variable:    n.variable,
				DataType:    n.dataType,
			})
		}
	}
	return out
}

// ClientRead performs a client-side read of a variable node.
func (s *Server) ClientRead(id ua.NodeID) (ua.DataValue, ua.StatusCode) {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok || !n.variable {
		s.mu.Unlock()
		return ua.DataValue{}, ua.StatusBadNodeIDUnknown
	}
	cb := n.cb
	ctx := n.ctx
	stored := n.value
	s.mu.Unlock()

	if cb.OnRead == nil {
		return ua.DataValue{Value: stored, HasValue: true, Status: ua.StatusGood, HasStatus: true}, ua.StatusGood
	}
	var dv ua.DataValue
	st := cb.OnRead(ctx, &dv)
	return dv, st
}

// ClientWrite performs a client-side write of a variable node.
func (s *Server) ClientWrite(id ua.NodeID, v ua.Variant) ua.StatusCode {
	s.mu.Lock()
	n, ok := s.nodes[id]
	if !ok || !n.variable {
		s.mu.Unlock()
		return ua.StatusBadNodeIDUnknown
	}
	if v.Type() != n.dataType {
		s.mu.Unlock()
		return ua.StatusBadTypeMismatch
	}
	cb := n.cb
	ctx := n.ctx
	s.mu.Unlock()

	// The callback runs without the stack lock held, as real stacks do:
	// the hook is allowed to take the scan lock, and holding our own
	// lock across it would invert the documented lock order.
	if cb.OnWrite != nil {
		if st := cb.OnWrite(ctx, ua.DataValue{Value: v, HasValue: true, Status: ua.StatusGood, HasStatus: true}); !st.IsGood() {
			return st
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n2, ok := s.nodes[id]; ok {
		n2.value = v
	}
	return ua.StatusGood
}
