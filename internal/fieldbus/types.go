// internal/fieldbus/types.go
package fieldbus

import (
	"time"

	"github.com/tamzrod/opcua-bridge/internal/image"
)

// Client abstracts the Modbus read operations the ingress needs.
// The poller depends on geometry only.
type Client interface {
	ReadCoils(addr, qty uint16) ([]bool, error)              // FC 1
	ReadDiscreteInputs(addr, qty uint16) ([]bool, error)     // FC 2
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4

	Close() error
}

// Factory builds a fresh client. ONE attempt per call; the poller
// invokes it after transport death.
type Factory func() (Client, error)

// ReadBlock is one poll geometry plus the contiguous run of image slots
// it lands in. Bit FCs fill X slots (bit advances minor, slot index
// major); register FCs fill W slots one register per slot.
type ReadBlock struct {
	FC       uint8
	Address  uint16
	Quantity uint16

	Area  image.Area
	Width image.Width
	Index int
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	Interval time.Duration
	Reads    []ReadBlock
}

// blockResult is the raw outcome of one read, held until the whole
// cycle succeeded.
type blockResult struct {
	block ReadBlock

	bits      []bool
	registers []uint16
}
