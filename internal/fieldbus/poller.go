// internal/fieldbus/poller.go
package fieldbus

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/opcua-bridge/internal/image"
	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// Poller fills process-image slots from one field device. It is a
// dumb, clock-driven reader: one attempt per tick, all-or-nothing per
// cycle. All network reads happen before the scan lock is taken, so the
// scan thread is never stalled behind a socket.
type Poller struct {
	cfg     Config
	img     *image.Image
	log     logrus.FieldLogger
	client  Client
	factory Factory
}

// New creates a poller with immutable config.
func New(cfg Config, img *image.Image, client Client, factory Factory, log logrus.FieldLogger) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("fieldbus: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("fieldbus: interval must be > 0")
	}
	if len(cfg.Reads) == 0 {
		return nil, errors.New("fieldbus: at least one read block required")
	}
	if img == nil {
		return nil, errors.New("fieldbus: image required")
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Poller{cfg: cfg, img: img, log: log, client: client, factory: factory}, nil
}

// PollOnce performs exactly one poll cycle: read every block, then
// commit them all under one scan-lock acquisition. Any read failure
// aborts the cycle, discards the client, and leaves the image untouched.
func (p *Poller) PollOnce() error {
	if p.client == nil {
		c, err := p.factory()
		if err != nil {
			return fmt.Errorf("fieldbus %s: connect: %w", p.cfg.UnitID, err)
		}
		p.client = c
	}

	results := make([]blockResult, 0, len(p.cfg.Reads))

	for _, rb := range p.cfg.Reads {
		res := blockResult{block: rb}
		var err error

		switch rb.FC {
		case 1:
			res.bits, err = p.client.ReadCoils(rb.Address, rb.Quantity)
		case 2:
			res.bits, err = p.client.ReadDiscreteInputs(rb.Address, rb.Quantity)
		case 3:
			res.registers, err = p.client.ReadHoldingRegisters(rb.Address, rb.Quantity)
		case 4:
			res.registers, err = p.client.ReadInputRegisters(rb.Address, rb.Quantity)
		default:
			err = fmt.Errorf("fieldbus %s: unsupported function code %d", p.cfg.UnitID, rb.FC)
		}

		if err != nil {
			// Transport death: drop the client, the factory rebuilds on
			// a future tick.
			p.client.Close()
			p.client = nil
			return fmt.Errorf("fieldbus %s: fc=%d addr=%d: %w", p.cfg.UnitID, rb.FC, rb.Address, err)
		}
		results = append(results, res)
	}

	// Commit only if all reads succeeded.
	skipped := 0
	p.img.Lock()
	for _, res := range results {
		skipped += p.commit(res)
	}
	p.img.Unlock()

	if skipped > 0 {
		p.log.WithFields(logrus.Fields{"unit": p.cfg.UnitID, "skipped": skipped}).
			Debug("absent destination slots skipped")
	}
	return nil
}

// commit stores one block into its destination slots. Caller holds the
// scan lock. Returns how many destinations were absent.
func (p *Poller) commit(res blockResult) int {
	rb := res.block
	skipped := 0

	switch rb.Width {
	case image.WidthBit:
		for i, v := range res.bits {
			idx := rb.Index + i/8
			bit := i % 8
			cell, ok := p.img.Slot(rb.Area, image.WidthBit, idx, bit)
			if !ok {
				skipped++
				continue
			}
			cell.Store(ua.NewBoolean(v))
		}
	case image.WidthWord:
		for i, v := range res.registers {
			cell, ok := p.img.Slot(rb.Area, image.WidthWord, rb.Index+i, -1)
			if !ok {
				skipped++
				continue
			}
			cell.Store(ua.NewUInt16(v))
		}
	}

	return skipped
}

// Close releases the current client, if any.
func (p *Poller) Close() error {
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
