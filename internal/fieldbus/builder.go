// internal/fieldbus/builder.go
package fieldbus

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	cfg "github.com/tamzrod/opcua-bridge/internal/config"
	fbmodbus "github.com/tamzrod/opcua-bridge/internal/fieldbus/modbus"
	"github.com/tamzrod/opcua-bridge/internal/image"
)

// Build constructs a Poller for one configured unit and wires the Modbus
// client lifecycle. The connection is reused while healthy; on transport
// death the poller discards it and uses the factory on a future tick.
func Build(u cfg.UnitConfig, img *image.Image, log logrus.FieldLogger) (*Poller, error) {
	factory := func() (Client, error) {
		return fbmodbus.New(fbmodbus.Config{
			Endpoint: u.Endpoint,
			UnitID:   u.UnitID,
			Timeout:  time.Duration(u.TimeoutMs) * time.Millisecond,
		})
	}

	// initial client (fail fast at startup)
	client, err := factory()
	if err != nil {
		return nil, err
	}

	reads := make([]ReadBlock, 0, len(u.Reads))
	for _, r := range u.Reads {
		if len(r.Area) != 1 || len(r.Width) != 1 {
			client.Close()
			return nil, fmt.Errorf("fieldbus %s: bad destination %q/%q", u.ID, r.Area, r.Width)
		}
		reads = append(reads, ReadBlock{
			FC:       r.FC,
			Address:  r.Address,
			Quantity: r.Quantity,
			Area:     image.Area(r.Area[0]),
			Width:    image.Width(r.Width[0]),
			Index:    r.Index,
		})
	}

	p, err := New(
		Config{
			UnitID:   u.ID,
			Interval: time.Duration(u.IntervalMs) * time.Millisecond,
			Reads:    reads,
		},
		img,
		client,
		factory,
		log,
	)
	if err != nil {
		client.Close()
		return nil, err
	}

	return p, nil
}
