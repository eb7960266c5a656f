// internal/image/cell.go
package image

import (
	"fmt"

	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// Cell is a borrowed reference to one live process-image slot. Load and
// Store dereference PLC memory, so the caller must hold the scan lock.
// Store rejects variants of any type other than the cell's own; widths
// are exact, no widening.
type Cell interface {
	Type() ua.TypeID
	Load() ua.Variant
	Store(v ua.Variant) error
}

func storeErr(want, got ua.TypeID) error {
	return fmt.Errorf("image: store %v into %v cell: %w", got, want, ua.ErrTypeMismatch)
}

type boolCell struct{ p *bool }

func (c boolCell) Type() ua.TypeID { return ua.TypeBoolean }
func (c boolCell) Load() ua.Variant {
	return ua.NewBoolean(*c.p)
}
func (c boolCell) Store(v ua.Variant) error {
	if v.Type() != ua.TypeBoolean {
		return storeErr(ua.TypeBoolean, v.Type())
	}
	*c.p = v.Boolean()
	return nil
}

type byteCell struct{ p *uint8 }

func (c byteCell) Type() ua.TypeID { return ua.TypeByte }
func (c byteCell) Load() ua.Variant {
	return ua.NewByte(*c.p)
}
func (c byteCell) Store(v ua.Variant) error {
	if v.Type() != ua.TypeByte {
		return storeErr(ua.TypeByte, v.Type())
	}
	*c.p = v.Byte()
	return nil
}

type wordCell struct{ p *uint16 }

func (c wordCell) Type() ua.TypeID { return ua.TypeUInt16 }
func (c wordCell) Load() ua.Variant {
	return ua.NewUInt16(*c.p)
}
func (c wordCell) Store(v ua.Variant) error {
	if v.Type() != ua.TypeUInt16 {
		return storeErr(ua.TypeUInt16, v.Type())
	}
	*c.p = v.UInt16()
	return nil
}

type dwordCell struct{ p *uint32 }

func (c dwordCell) Type() ua.TypeID { return ua.TypeUInt32 }
func (c dwordCell) Load() ua.Variant {
	return ua.NewUInt32(*c.p)
}
func (c dwordCell) Store(v ua.Variant) error {
	if v.Type() != ua.TypeUInt32 {
		return storeErr(ua.TypeUInt32, v.Type())
	}
	*c.p = v.UInt32()
	return nil
}

type lwordCell struct{ p *uint64 }

func (c lwordCell) Type() ua.TypeID { return ua.TypeUInt64 }
func (c lwordCell) Load() ua.Variant {
	return ua.NewUInt64(*c.p)
}
func (c lwordCell) Store(v ua.Variant) error {
	if v.Type() != ua.TypeUInt64 {
		return storeErr(ua.TypeUInt64, v.Type())
	}
	*c.p = v.UInt64()
	return nil
}

type realCell struct{ p *float32 }

func (c realCell) Type() ua.TypeID { return ua.TypeFloat }
func (c realCell) Load() ua.Variant {
	return ua.NewFloat(*c.p)
}
func (c realCell) Store(v ua.Variant) error {
	if v.Type() != ua.TypeFloat {
		return storeErr(ua.TypeFloat, v.Type())
	}
	*c.p = v.Float()
	return nil
}

type lrealCell struct{ p *float64 }

func (c lrealCell) Type() ua.TypeID { return ua.TypeDouble }
func (c lrealCell) Load() ua.Variant {
	return ua.NewDouble(*c.p)
}
func (c lrealCell) Store(v ua.Variant) error {
	if v.Type() != ua.TypeDouble {
		return storeErr(ua.TypeDouble, v.Type())
	}
	*c.p = v.Double()
	return nil
}
