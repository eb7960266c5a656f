// internal/engine/engine_test.go
package engine

import (
	"context"
	"testing"
	"time"

	"github.com/tamzrod/opcua-bridge/internal/image"
)

func TestStep_RunsProgramThenPublishes(t *testing.T) {
	img := image.New()
	p := img.AllocWord(image.AreaOutput, 0)

	published := 0
	var seen uint16

	program := func(im *image.Image) {
		*p = *p + 1
	}
	publish := func() {
		// The engine must not hold the scan lock here.
		img.Lock()
		seen = *p
		img.Unlock()
		published++
	}

	e, err := New(img, time.Millisecond, program, publish)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e.Step()
	e.Step()

	if published != 2 {
		t.Fatalf("published=%d", published)
	}
	if seen != 2 {
		t.Fatalf("seen=%d", seen)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	img := image.New()
	e, err := New(img, time.Millisecond, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, time.Second, nil, nil); err == nil {
		t.Fatalf("nil image accepted")
	}
	if _, err := New(image.New(), 0, nil, nil); err == nil {
		t.Fatalf("zero period accepted")
	}
}
