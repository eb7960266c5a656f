// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/opcua-bridge/internal/image"
)

// Program is one scan of the PLC program body. It runs with the scan
// lock held and must not block.
type Program func(*image.Image)

// Engine is a fixed-period scan host: lock the image, run the program
// body, unlock, publish. It stands in for the real runtime, which owns
// the tick and calls the publisher the same way.
type Engine struct {
	img     *image.Image
	period  time.Duration
	program Program
	publish func()
}

// New creates an engine. program may be nil (I/O only); publish may be
// nil when no bridge is attached.
func New(img *image.Image, period time.Duration, program Program, publish func()) (*Engine, error) {
	if img == nil {
		return nil, errors.New("engine: image required")
	}
	if period <= 0 {
		return nil, errors.New("engine: period must be > 0")
	}
	return &Engine{img: img, period: period, program: program, publish: publish}, nil
}

// Step executes exactly one scan cycle.
func (e *Engine) Step() {
	e.img.Lock()
	if e.program != nil {
		e.program(e.img)
	}
	e.img.Unlock()

	// The publisher takes the scan lock itself; calling it while still
	// holding the lock would deadlock, same contract as the runtime.
	if e.publish != nil {
		e.publish()
	}
}

// Run drives Step on the configured period until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Step()
		}
	}
}
