// internal/stack/memstack/memstack.go
package memstack

import (
	"fmt"
	"net"
	"sync"

	"github.com/tamzrod/opcua-bridge/internal/stack"
	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// Server is a minimal in-process OPC UA stack: an address space of folder
// and scalar variable nodes with value callbacks, plus a TCP acceptor so
// endpoint lifecycle is observable. It implements stack.Instance. The
// wire protocol itself is not implemented; in-process client operations
// (ClientRead/ClientWrite) stand in for sessions, which is all the
// bundled binary and the tests need.
type Server struct {
	mu         sync.Mutex
	port       int
	namespaces []string
	nodes      map[ua.NodeID]*node
	ln         net.Listener
	conns      map[net.Conn]struct{}
	started    bool
	closed     bool
}

type node struct {
	id       ua.NodeID
	parent   ua.NodeID
	browse   string
	display  string
	variable bool
	dataType ua.TypeID
	value    ua.Variant
	ctx      uint64
	hasCtx   bool
	cb       stack.ValueCallback
}

// New creates an unstarted server. Port 0 selects an ephemeral port,
// which the tests use.
func New(port int) *Server {
	s := &Server{
		port:       port,
		namespaces: []string{"http://opcfoundation.org/UA/"},
		nodes:      make(map[ua.NodeID]*node),
		conns:      make(map[net.Conn]struct{}),
	}
	// Seed the standard Objects folder so the root object has a parent.
	s.nodes[ua.ObjectsFolder] = &node{
		id:      ua.ObjectsFolder,
		browse:  "Objects",
		display: "Objects",
	}
	return s
}

// Open is a stack.Factory for Server.
func Open(port int) (stack.Instance, error) {
	return New(port), nil
}

var _ stack.Instance = (*Server)(nil)

func (s *Server) AddNamespace(uri string) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.namespaces {
		if u == uri {
			return uint16(i)
		}
	}
	s.namespaces = append(s.namespaces, uri)
	return uint16(len(s.namespaces) - 1)
}

func (s *Server) AddObjectNode(id, parent ua.NodeID, browseName, displayName string) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ua.StatusBadServerHalted
	}
	if _, ok := s.nodes[id]; ok {
		return ua.StatusBadNodeIDExists
	}
	if _, ok := s.nodes[parent]; !ok {
		return ua.StatusBadNodeIDUnknown
	}
	s.nodes[id] = &node{id: id, parent: parent, browse: browseName, display: displayName}
	return ua.StatusGood
}

func (s *Server) AddVariableNode(attrs stack.VariableAttributes) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ua.StatusBadServerHalted
	}
	if _, ok := s.nodes[attrs.ID]; ok {
		return ua.StatusBadNodeIDExists
	}
	if _, ok := s.nodes[attrs.Parent]; !ok {
		return ua.StatusBadNodeIDUnknown
	}
	if attrs.Initial.Type() != attrs.DataType {
		return ua.StatusBadTypeMismatch
	}
	s.nodes[attrs.ID] = &node{
		id:       attrs.ID,
		parent:   attrs.Parent,
		browse:   attrs.BrowseName,
		display:  attrs.DisplayName,
		variable: true,
		dataType: attrs.DataType,
		value:    attrs.Initial,
	}
	return ua.StatusGood
}

func (s *Server) SetNodeContext(id ua.NodeID, ctx uint64) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return ua.StatusBadNodeIDUnknown
	}
	n.ctx = ctx
	n.hasCtx = true
	return ua.StatusGood
}

func (s *Server) SetValueCallback(id ua.NodeID, cb stack.ValueCallback) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return ua.StatusBadNodeIDUnknown
	}
	if !n.variable {
		return ua.StatusBadInternalError
	}
	n.cb = cb
	return ua.StatusGood
}

func (s *Server) WriteValue(id ua.NodeID, v ua.Variant) ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ua.StatusBadServerHalted
	}
	n, ok := s.nodes[id]
	if !ok {
		return ua.StatusBadNodeIDUnknown
	}
	if !n.variable {
		return ua.StatusBadInternalError
	}
	if v.Type() != n.dataType {
		return ua.StatusBadTypeMismatch
	}
	n.value = v
	return ua.StatusGood
}

func (s *Server) RunStartup() ua.StatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.started {
		return ua.StatusBadInternalError
	}
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return ua.StatusBadInternalError
	}
	s.ln = ln
	s.started = true
	go s.acceptLoop(ln)
	return ua.StatusGood
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed || !s.started {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
	}
}

func (s *Server) Iterate(wait bool) {
	// All protocol work in this stack happens inline in the client
	// operations; iterate only has to exist for the serve loop.
	_ = wait
}

func (s *Server) RunShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownLocked()
}

func (s *Server) shutdownLocked() {
	if s.ln != nil {
		s.ln.Close()
		s.ln = nil
	}
	for c := range s.conns {
		c.Close()
		delete(s.conns, c)
	}
	s.started = false
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownLocked()
	s.nodes = make(map[ua.NodeID]*node)
	s.closed = true
	return nil
}

// Addr returns the bound endpoint address, or "" before startup. Lets
// tests dial the real listener when port 0 was used.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}
