// cmd/bridge/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/opcua-bridge/internal/bridge"
	"github.com/tamzrod/opcua-bridge/internal/config"
	"github.com/tamzrod/opcua-bridge/internal/engine"
	"github.com/tamzrod/opcua-bridge/internal/fieldbus"
	"github.com/tamzrod/opcua-bridge/internal/image"
	"github.com/tamzrod/opcua-bridge/internal/located"
	"github.com/tamzrod/opcua-bridge/internal/stack/memstack"
)

// scanPeriod is the demo host's ticktime. The real runtime owns this.
const scanPeriod = 100 * time.Millisecond

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		log.Fatal("usage: bridge <config.yaml>")
	}
	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --------------------
	// Process image: allocate the slots the manifest locates, standing
	// in for the compiler glue that runs at program load.
	// --------------------

	img := image.New()
	if n := allocateFromManifest(img, cfg, log); n > 0 {
		log.WithField("slots", n).Info("process image allocated")
	}

	// --------------------
	// Fieldbus ingress units (optional)
	// --------------------

	for _, unit := range cfg.Bridge.Fieldbus.Units {
		p, err := fieldbus.Build(unit, img, log.WithField("unit", unit.ID))
		if err != nil {
			log.Fatalf("fieldbus build failed (unit=%s): %v", unit.ID, err)
		}
		go p.Run(ctx)
	}

	// --------------------
	// Bridge + scan host
	// --------------------

	b := bridge.New(img, memstack.Open, log, bridge.Options{
		ManifestFile:      cfg.Bridge.Manifest.File,
		SearchPaths:       cfg.Bridge.Manifest.SearchPaths,
		IteratePeriod:     time.Duration(cfg.Bridge.Server.IterateMs) * time.Millisecond,
		StopGrace:         time.Duration(cfg.Bridge.Server.StopGraceMs) * time.Millisecond,
		SuppressReadValue: cfg.Bridge.Publisher.SuppressReadValue,
	})

	eng, err := engine.New(img, scanPeriod, nil, b.Publish)
	if err != nil {
		log.Fatalf("engine build failed: %v", err)
	}
	go eng.Run(ctx)

	if err := b.Start(cfg.Bridge.Server.Port); err != nil {
		log.Fatalf("bridge start failed: %v", err)
	}

	<-ctx.Done()

	if err := b.Stop(); err != nil {
		log.WithError(err).Warn("bridge stop")
	}
}

// allocateFromManifest gives every well-formed manifest record a backing
// slot. Records the image cannot hold (area M bit/byte widths) are left
// absent; the bridge skips them at ingestion the same way the runtime
// skips slots the compiler never allocated.
func allocateFromManifest(img *image.Image, cfg *config.Config, log logrus.FieldLogger) int {
	recs, path, err := located.ReadManifest(cfg.Bridge.Manifest.File, cfg.Bridge.Manifest.SearchPaths)
	if err != nil {
		log.WithError(err).Warn("no manifest for image allocation")
		return 0
	}
	log.WithField("path", path).Info("allocating image from manifest")

	n := 0
	for _, rec := range recs {
		if rec.Err != nil {
			continue
		}
		loc := rec.Loc
		var ok bool
		switch loc.Width {
		case image.WidthBit:
			ok = img.AllocBool(loc.Area, loc.Index, loc.Bit) != nil
		case image.WidthByte:
			ok = img.AllocByte(loc.Area, loc.Index) != nil
		case image.WidthWord:
			ok = img.AllocWord(loc.Area, loc.Index) != nil
		case image.WidthDword:
			ok = img.AllocDword(loc.Area, loc.Index) != nil
		case image.WidthLword:
			ok = img.AllocLword(loc.Area, loc.Index) != nil
		case image.WidthReal:
			ok = img.AllocReal(loc.Area, loc.Index) != nil
		case image.WidthLreal:
			ok = img.AllocLreal(loc.Area, loc.Index) != nil
		}
		if ok {
			n++
		}
	}
	return n
}
