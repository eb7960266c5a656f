// internal/stack/stack.go
package stack

import (
	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// This package pins down the server-side API the bridge consumes from an
// OPC UA stack. Session handling, encoding, transport and security live
// behind this boundary; the bridge needs exactly the calls below and
// nothing else. Memstack is the in-process implementation used by the
// bundled binary and the test suite; a cgo binding to a full stack would
// satisfy the same interface.

// AccessLevel is the node access bit mask.
type AccessLevel uint8

const (
	AccessRead  AccessLevel = 1 << 0
	AccessWrite AccessLevel = 1 << 1
)

// VariableAttributes describes one scalar variable node at creation time.
// The initial value must carry the declared data type; stacks type-check
// it and refuse the node otherwise.
type VariableAttributes struct {
	ID          ua.NodeID
	Parent      ua.NodeID
	BrowseName  string
	DisplayName string
	DataType    ua.TypeID
	Access      AccessLevel
	Initial     ua.Variant
}

// ValueCallback is the read/write hook pair attached to a variable node.
// The stack passes back the opaque node context installed via
// SetNodeContext. OnRead fills the outgoing DataValue; OnWrite is offered
// the incoming one and may veto it with a bad status, in which case the
// stack must not commit the value to its node store.
type ValueCallback struct {
	OnRead  func(nodeCtx uint64, out *ua.DataValue) ua.StatusCode
	OnWrite func(nodeCtx uint64, in ua.DataValue) ua.StatusCode
}

// Instance is one server instance. Instances are single-use: once shut
// down they are dead, and a restart must create a fresh one (reusing an
// instance leaks stack-internal allocations).
type Instance interface {
	// AddNamespace registers a namespace URI and returns its index.
	// Index 0 is the OPC UA namespace itself; a stack returning 0 for a
	// custom URI has failed.
	AddNamespace(uri string) uint16

	// AddObjectNode creates a FolderType object node with an explicit
	// numeric id. Returns StatusBadNodeIDExists if the id is taken.
	AddObjectNode(id, parent ua.NodeID, browseName, displayName string) ua.StatusCode

	// AddVariableNode creates a scalar variable node.
	AddVariableNode(attrs VariableAttributes) ua.StatusCode

	// SetNodeContext installs the opaque context handed to callbacks.
	SetNodeContext(id ua.NodeID, ctx uint64) ua.StatusCode

	// SetValueCallback attaches the read/write hook pair to a variable.
	SetValueCallback(id ua.NodeID, cb ValueCallback) ua.StatusCode

	// WriteValue stores a scalar into a node's value from the server
	// side, bypassing the write callback. Used by the publisher.
	WriteValue(id ua.NodeID, v ua.Variant) ua.StatusCode

	// RunStartup binds the endpoint and makes the instance servable.
	RunStartup() ua.StatusCode

	// Iterate performs one unit of protocol work. With wait set the
	// stack may block briefly waiting for network activity.
	Iterate(wait bool)

	// RunShutdown unbinds the endpoint; clients are refused afterwards.
	RunShutdown()

	// Close destroys the instance and frees everything it owns.
	Close() error
}

// Factory creates a fresh instance bound to a TCP port. The bridge calls
// it once per Start.
type Factory func(port int) (Instance, error)
