// internal/bridge/bridge.go
package bridge

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/opcua-bridge/internal/image"
	"github.com/tamzrod/opcua-bridge/internal/stack"
)

// State is the lifecycle state of the bridge.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	}
	return "UNKNOWN"
}

// ErrAlreadyRunning is returned by Start outside IDLE; the call is a
// logged no-op.
var ErrAlreadyRunning = errors.New("bridge: already running")

// ErrNotRunning is returned by Stop outside RUNNING; the call is a
// logged no-op.
var ErrNotRunning = errors.New("bridge: not running")

// DefaultNamespaceURI is the custom namespace registered at start.
const DefaultNamespaceURI = "http://openplc.org/"

// DefaultManifestFile is the compiler-emitted manifest name.
const DefaultManifestFile = "LOCATED_VARIABLES.h"

// Options tune a Bridge. Zero values select the defaults.
type Options struct {
	ManifestFile  string
	SearchPaths   []string // probed in order for the manifest
	NamespaceURI  string
	IteratePeriod time.Duration // cooperative yield between stack iterations
	StopGrace     time.Duration // wait for the serve loop before forced teardown

	// SuppressReadValue preserves the legacy read behavior: callbacks
	// return Good with no value instead of the shadow value.
	SuppressReadValue bool

	// StateHook observes every lifecycle transition. Test use.
	StateHook func(State)
}

func (o *Options) fillDefaults() {
	if o.ManifestFile == "" {
		o.ManifestFile = DefaultManifestFile
	}
	if len(o.SearchPaths) == 0 {
		o.SearchPaths = []string{".", "./core", "../core", ".."}
	}
	if o.NamespaceURI == "" {
		o.NamespaceURI = DefaultNamespaceURI
	}
	if o.IteratePeriod <= 0 {
		o.IteratePeriod = 50 * time.Millisecond
	}
	if o.StopGrace <= 0 {
		o.StopGrace = 100 * time.Millisecond
	}
}

// Bridge exposes one process image through one OPC UA server instance.
// Start builds a fresh stack instance, address space and binding set;
// Stop tears all of it down. The scan engine calls Publish once per
// cycle.
type Bridge struct {
	log  logrus.FieldLogger
	img  *image.Image
	open stack.Factory
	opt  Options

	running atomic.Bool

	mu         sync.Mutex // guards everything below; never held across a stack call
	state      State
	inst       stack.Instance
	ns         uint16
	bindings   map[uint64]*binding
	order      []uint64 // publish iteration order, stable per lifetime
	nextHandle uint64
	loopDone   chan struct{}
}

// New creates an idle bridge over the given image. A nil logger
// discards. The factory is invoked once per Start so every lifecycle
// gets a fresh stack instance; reusing one across restarts leaks
// stack-internal allocations.
func New(img *image.Image, open stack.Factory, log logrus.FieldLogger, opt Options) *Bridge {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	opt.fillDefaults()
	return &Bridge{
		log:      log,
		img:      img,
		open:     open,
		opt:      opt,
		state:    StateIdle,
		bindings: make(map[uint64]*binding),
	}
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BindingCount returns the number of live bindings.
func (b *Bridge) BindingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bindings)
}

func (b *Bridge) setState(s State) {
	b.state = s
	if b.opt.StateHook != nil {
		b.opt.StateHook(s)
	}
}

// Start brings the bridge from IDLE to RUNNING: fresh stack instance,
// namespace, folder tree, manifest ingestion, endpoint startup, serve
// loop. Any lifecycle failure destroys the instance and returns the
// bridge to IDLE. Outside IDLE the call is a logged no-op returning
// ErrAlreadyRunning.
func (b *Bridge) Start(port int) error {
	b.mu.Lock()
	if b.state != StateIdle {
		st := b.state
		b.mu.Unlock()
		b.log.WithField("state", st.String()).Info("start ignored")
		return ErrAlreadyRunning
	}
	b.setState(StateStarting)
	b.mu.Unlock()

	b.log.WithField("port", port).Info("starting OPC UA server")

	abort := func(inst stack.Instance, err error) error {
		if inst != nil {
			inst.Close()
		}
		b.mu.Lock()
		b.inst = nil
		b.destroyBindings()
		b.setState(StateIdle)
		b.mu.Unlock()
		b.log.WithError(err).Error("start failed")
		return err
	}

	inst, err := b.open(port)
	if err != nil {
		return abort(nil, fmt.Errorf("bridge: create server instance: %w", err))
	}

	ns := inst.AddNamespace(b.opt.NamespaceURI)
	if ns == 0 {
		return abort(inst, fmt.Errorf("bridge: namespace %q registered with index 0", b.opt.NamespaceURI))
	}
	b.log.WithFields(logrus.Fields{
		"uri":     b.opt.NamespaceURI,
		"index":   ns,
		"runtime": runtime.Version(),
	}).Info("namespace registered")

	b.ensureFolders(inst, ns)

	ar, stats := b.ingestManifest(inst, ns)
	b.log.WithFields(logrus.Fields{
		"seen":        stats.Seen,
		"added":       stats.Added,
		"invalid":     stats.Invalid,
		"malformed":   stats.Malformed,
		"unavailable": stats.Unavailable,
		"unsupported": stats.Unsupported,
		"duplicate":   stats.Duplicate,
		"failed":      stats.Failed,
	}).Info("manifest ingested")

	// Bindings become resolvable before the endpoint opens, so the first
	// client operation always finds its context.
	b.mu.Lock()
	b.inst = inst
	b.ns = ns
	b.bindings = ar.byHandle
	b.order = ar.order
	b.mu.Unlock()

	if st := inst.RunStartup(); !st.IsGood() {
		return abort(inst, fmt.Errorf("bridge: server startup: %s", st))
	}

	done := make(chan struct{})
	b.mu.Lock()
	b.loopDone = done
	b.setState(StateRunning)
	b.mu.Unlock()
	b.running.Store(true)

	go b.serve(inst, done)

	b.log.WithFields(logrus.Fields{"port": port, "bindings": len(ar.byHandle)}).
		Info("OPC UA server started")
	return nil
}

// serve is the iterate loop: one unit of protocol work, then a
// cooperative yield, until the running flag clears.
func (b *Bridge) serve(inst stack.Instance, done chan struct{}) {
	defer close(done)
	for b.running.Load() {
		inst.Iterate(true)
		time.Sleep(b.opt.IteratePeriod)
	}
}

// Stop brings the bridge from RUNNING back to IDLE: clear the running
// flag, give the serve loop one grace period to exit, shut the endpoint
// down and destroy the instance and bindings. Outside RUNNING the call
// is a logged no-op returning ErrNotRunning.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	if b.state != StateRunning {
		st := b.state
		b.mu.Unlock()
		b.log.WithField("state", st.String()).Info("stop ignored")
		return ErrNotRunning
	}
	b.setState(StateStopping)
	done := b.loopDone
	inst := b.inst
	b.mu.Unlock()

	b.log.Info("stopping OPC UA server")
	b.running.Store(false)

	select {
	case <-done:
	case <-time.After(b.opt.StopGrace):
		b.log.Warn("serve loop did not exit in time, forcing teardown")
	}

	inst.RunShutdown()
	inst.Close()

	b.mu.Lock()
	b.inst = nil
	destroyed := b.destroyBindings()
	leaked := len(b.bindings)
	b.setState(StateIdle)
	b.mu.Unlock()

	if leaked != 0 {
		b.log.WithField("count", leaked).Error("binding leak after stop")
	}
	b.log.WithField("bindings", destroyed).Info("OPC UA server stopped")
	return nil
}
