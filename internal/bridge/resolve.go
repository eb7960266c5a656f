// internal/bridge/resolve.go
package bridge

import (
	"errors"
	"fmt"

	"github.com/tamzrod/opcua-bridge/internal/image"
	"github.com/tamzrod/opcua-bridge/internal/located"
	"github.com/tamzrod/opcua-bridge/internal/ua"
)

// ErrUnavailable marks a well-formed location whose slot the compiler
// never allocated. Entries hitting it are skipped, not failed.
var ErrUnavailable = errors.New("bridge: slot unavailable")

// ErrUnsupported marks an area/width combination outside the supported
// matrix (memory area carries no bit or byte slots).
var ErrUnsupported = errors.New("bridge: unsupported area/width combination")

// scalarType fixes the exposed scalar type from the width glyph. The
// IEC_TYPE column of the manifest is informational only: B always maps
// to the unsigned byte, W/D/L to the unsigned integers. Selecting signed
// types from the declaration is a known open point; the variant layer
// already carries the signed scalars if that changes.
func scalarType(loc located.Location) (ua.TypeID, error) {
	if loc.Area == image.AreaMemory && (loc.Width == image.WidthBit || loc.Width == image.WidthByte) {
		return ua.TypeInvalid, fmt.Errorf("%w: %s", ErrUnsupported, loc)
	}
	switch loc.Width {
	case image.WidthBit:
		return ua.TypeBoolean, nil
	case image.WidthByte:
		return ua.TypeByte, nil
	case image.WidthWord:
		return ua.TypeUInt16, nil
	case image.WidthDword:
		return ua.TypeUInt32, nil
	case image.WidthLword:
		return ua.TypeUInt64, nil
	case image.WidthReal:
		return ua.TypeFloat, nil
	case image.WidthLreal:
		return ua.TypeDouble, nil
	}
	return ua.TypeInvalid, fmt.Errorf("%w: %s", ErrUnsupported, loc)
}

// resolve yields the image cell and scalar type for a parsed location.
func (b *Bridge) resolve(loc located.Location) (image.Cell, ua.TypeID, error) {
	typ, err := scalarType(loc)
	if err != nil {
		return nil, ua.TypeInvalid, err
	}
	cell, ok := b.img.Slot(loc.Area, loc.Width, loc.Index, loc.Bit)
	if !ok {
		return nil, ua.TypeInvalid, fmt.Errorf("%w: %s", ErrUnavailable, loc)
	}
	return cell, typ, nil
}
