// internal/located/location.go
package located

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/opcua-bridge/internal/image"
)

// ErrInvalidLocation marks a location token that does not match
// %<area><width><index>[.<bit>].
var ErrInvalidLocation = errors.New("located: invalid location")

// Location is a parsed IEC address. Bit is -1 for every width except X.
type Location struct {
	Area  image.Area
	Width image.Width
	Index int
	Bit   int
}

// String renders the canonical token form, e.g. %IX0.1 or %MD954.
func (l Location) String() string {
	if l.Width == image.WidthBit {
		return fmt.Sprintf("%%%c%c%d.%d", l.Area, l.Width, l.Index, l.Bit)
	}
	return fmt.Sprintf("%%%c%c%d", l.Area, l.Width, l.Index)
}

// Parse accepts a token of the shape %[IQM][XBWDLRF]<digits>[.<digits>].
// The dot part is mandatory for width X, with a bit in [0,8), and
// forbidden for every other width. Anything else fails with
// ErrInvalidLocation. Range checking against the image size is not done
// here; an oversized index simply resolves to an absent slot later.
func Parse(token string) (Location, error) {
	bad := func(why string) (Location, error) {
		return Location{}, fmt.Errorf("%w: %q (%s)", ErrInvalidLocation, token, why)
	}

	if len(token) < 4 || token[0] != '%' {
		return bad("expected %AWN shape")
	}
	area := image.Area(token[1])
	if !area.Valid() {
		return bad("unknown area")
	}
	width := image.Width(token[2])
	if !width.Valid() {
		return bad("unknown width")
	}

	rest := token[3:]
	idxPart := rest
	bitPart := ""
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		idxPart = rest[:dot]
		bitPart = rest[dot+1:]
		if width != image.WidthBit {
			return bad("bit suffix only valid for X")
		}
	} else if width == image.WidthBit {
		return bad("X requires a bit suffix")
	}

	index, err := parseDigits(idxPart)
	if err != nil {
		return bad("bad index")
	}

	bit := -1
	if width == image.WidthBit {
		bit, err = parseDigits(bitPart)
		if err != nil {
			return bad("bad bit")
		}
		if bit >= 8 {
			return bad("bit out of range")
		}
	}

	return Location{Area: area, Width: width, Index: index, Bit: bit}, nil
}

// parseDigits accepts non-empty unsigned decimal only. Signs, spaces and
// empty strings all fail, so %MW-1 is rejected at the token level.
func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
