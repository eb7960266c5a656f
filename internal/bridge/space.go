// internal/bridge/space.go
package bridge

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/opcua-bridge/internal/image"
	"github.com/tamzrod/opcua-bridge/internal/located"
	"github.com/tamzrod/opcua-bridge/internal/stack"
	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// Numeric node ids in the custom namespace. Variables get ids from a
// monotonic counter so they never collide with the folder range.
const (
	nodeRoot             uint32 = 1000
	nodeBooleanInputs    uint32 = 2000
	nodeBooleanOutputs   uint32 = 2001
	nodeIntegerInputs    uint32 = 2002
	nodeIntegerOutputs   uint32 = 2003
	nodeMemoryVariables  uint32 = 2004
	nodeProgramVariables uint32 = 2100

	firstVariableNode uint32 = 4000000
)

type folderSpec struct {
	id      uint32
	parent  uint32
	browse  string
	display string
}

var folders = []folderSpec{
	{nodeBooleanInputs, nodeRoot, "BooleanInputs", "Boolean Inputs"},
	{nodeBooleanOutputs, nodeRoot, "BooleanOutputs", "Boolean Outputs"},
	{nodeIntegerInputs, nodeRoot, "IntegerInputs", "Integer Inputs"},
	{nodeIntegerOutputs, nodeRoot, "IntegerOutputs", "Integer Outputs"},
	{nodeMemoryVariables, nodeRoot, "MemoryVariables", "Memory Variables"},
	{nodeProgramVariables, nodeRoot, "ProgramVariables", "Program Variables"},
}

// ensureFolders builds the fixed folder tree under the standard Objects
// folder. NodeIdExists counts as success, so the call is idempotent.
// Folder failures are logged and not fatal; variables whose parent is
// missing will fail on their own later.
func (b *Bridge) ensureFolders(inst stack.Instance, ns uint16) {
	root := ua.NodeID{Namespace: ns, ID: nodeRoot}
	if st := inst.AddObjectNode(root, ua.ObjectsFolder, "OpenPLC", "OpenPLC"); !st.IsGood() && st != ua.StatusBadNodeIDExists {
		b.log.WithField("status", st.String()).Error("failed to create root folder")
	}

	for _, f := range folders {
		id := ua.NodeID{Namespace: ns, ID: f.id}
		parent := ua.NodeID{Namespace: ns, ID: f.parent}
		if st := inst.AddObjectNode(id, parent, f.browse, f.display); !st.IsGood() && st != ua.StatusBadNodeIDExists {
			b.log.WithFields(logrus.Fields{
				"folder": f.browse,
				"status": st.String(),
			}).Error("failed to create folder")
		}
	}
}

// ingestStats counts the outcome of one manifest pass.
type ingestStats struct {
	Seen        int
	Added       int
	Invalid     int
	Malformed   int
	Unavailable int
	Unsupported int
	Duplicate   int
	Failed      int
}

// arena is the binding set built during one start.
type arena struct {
	byHandle map[uint64]*binding
	order    []uint64
}

// ingestManifest reads the located-variables manifest and creates one
// variable node per resolvable record under ProgramVariables. Per-record
// failures never abort the pass: the bridge starts with whatever subset
// resolves.
func (b *Bridge) ingestManifest(inst stack.Instance, ns uint16) (arena, ingestStats) {
	ar := arena{byHandle: make(map[uint64]*binding)}
	var stats ingestStats

	recs, path, err := located.ReadManifest(b.opt.ManifestFile, b.opt.SearchPaths)
	if err != nil {
		// A missing manifest means an empty address space, not a failed
		// start.
		b.log.WithError(err).Warn("manifest not readable, no variable nodes created")
		return ar, stats
	}
	b.log.WithField("path", path).Info("manifest found")

	parent := ua.NodeID{Namespace: ns, ID: nodeProgramVariables}
	nextNode := firstVariableNode

	for _, rec := range recs {
		stats.Seen++

		if rec.Err != nil {
			switch {
			case errors.Is(rec.Err, located.ErrMalformedManifest):
				stats.Malformed++
			case errors.Is(rec.Err, located.ErrInvalidLocation):
				stats.Invalid++
			default:
				stats.Malformed++
			}
			b.log.WithError(rec.Err).Warn("manifest record skipped")
			continue
		}

		cell, typ, err := b.resolve(rec.Loc)
		if err != nil {
			// Absent and unsupported slots are a normal consequence of
			// what the compiler chose to allocate; count them, no noise.
			switch {
			case errors.Is(err, ErrUnsupported):
				stats.Unsupported++
			default:
				stats.Unavailable++
			}
			continue
		}

		id := ua.NodeID{Namespace: ns, ID: nextNode}
		nextNode++

		switch st := b.addVariable(inst, &ar, parent, id, rec.Name, cell, typ); st {
		case ua.StatusGood:
			stats.Added++
		case ua.StatusBadNodeIDExists:
			stats.Duplicate++
			b.log.WithFields(logrus.Fields{
				"name": rec.Name,
				"node": id.String(),
			}).Warn("node id exists, variable skipped")
		default:
			stats.Failed++
			b.log.WithFields(logrus.Fields{
				"name":   rec.Name,
				"node":   id.String(),
				"status": st.String(),
			}).Error("failed to add variable node")
		}
	}

	return ar, stats
}

// addVariable creates one scalar variable node with read/write callbacks
// and registers its binding in the arena. The initial value is the zero
// of the declared type, which stacks type-check at creation.
func (b *Bridge) addVariable(inst stack.Instance, ar *arena, parent, id ua.NodeID, name string, cell image.Cell, typ ua.TypeID) ua.StatusCode {
	b.log.WithFields(logrus.Fields{
		"name": name,
		"node": id.String(),
		"type": typ.String(),
	}).Debug("creating variable node")

	st := inst.AddVariableNode(stack.VariableAttributes{
		ID:          id,
		Parent:      parent,
		BrowseName:  name,
		DisplayName: name,
		DataType:    typ,
		Access:      stack.AccessRead | stack.AccessWrite,
		Initial:     ua.Zero(typ),
	})
	if !st.IsGood() {
		return st
	}

	b.nextHandle++
	bd := &binding{
		handle: b.nextHandle,
		nodeID: id,
		name:   name,
		typ:    typ,
		cell:   cell,
	}
	bd.setShadow(ua.Zero(typ))

	if st := inst.SetNodeContext(id, bd.handle); !st.IsGood() {
		b.log.WithFields(logrus.Fields{"node": id.String(), "status": st.String()}).
			Error("failed to set node context")
		return st
	}
	if st := inst.SetValueCallback(id, stack.ValueCallback{
		OnRead:  b.onRead,
		OnWrite: b.onWrite,
	}); !st.IsGood() {
		b.log.WithFields(logrus.Fields{"node": id.String(), "status": st.String()}).
			Error("failed to set value callback")
		return st
	}

	ar.byHandle[bd.handle] = bd
	ar.order = append(ar.order, bd.handle)
	return ua.StatusGood
}
