// internal/located/location_test.go
package located

import (
	"errors"
	"testing"

	"github.com/tamzrod/opcua-bridge/internal/image"
)

func TestParse_Valid(t *testing.T) {
	cases := []struct {
		token string
		want  Location
	}{
		{"%IX0.1", Location{image.AreaInput, image.WidthBit, 0, 1}},
		{"%QX12.7", Location{image.AreaOutput, image.WidthBit, 12, 7}},
		{"%IB3", Location{image.AreaInput, image.WidthByte, 3, -1}},
		{"%QW10", Location{image.AreaOutput, image.WidthWord, 10, -1}},
		{"%MD954", Location{image.AreaMemory, image.WidthDword, 954, -1}},
		{"%ML7", Location{image.AreaMemory, image.WidthLword, 7, -1}},
		{"%MR2", Location{image.AreaMemory, image.WidthReal, 2, -1}},
		{"%IF0", Location{image.AreaInput, image.WidthLreal, 0, -1}},
	}

	for _, tc := range cases {
		got, err := Parse(tc.token)
		if err != nil {
			t.Errorf("Parse(%q) err=%v", tc.token, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q)=%+v want %+v", tc.token, got, tc.want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	tokens := []string{
		"",
		"IX0.1",     // missing %
		"%ZX0.1",    // bad area
		"%IT0",      // bad width
		"%IX0",      // X without bit
		"%IX0.8",    // bit out of range
		"%IW5.1",    // dot forbidden for W
		"%MW-1",     // negative index
		"%MW",       // no index
		"%IX.1",     // no index
		"%IX0.",     // empty bit
		"%IX0.1.2",  // double dot
		"%QW 10",    // interior space
		"%QWten",    // non-numeric
	}

	for _, tok := range tokens {
		if _, err := Parse(tok); !errors.Is(err, ErrInvalidLocation) {
			t.Errorf("Parse(%q) err=%v, want ErrInvalidLocation", tok, err)
		}
	}
}

func TestLocation_String(t *testing.T) {
	loc := Location{image.AreaOutput, image.WidthBit, 0, 1}
	if got := loc.String(); got != "%QX0.1" {
		t.Fatalf("String()=%q", got)
	}
	loc = Location{image.AreaMemory, image.WidthDword, 954, -1}
	if got := loc.String(); got != "%MD954" {
		t.Fatalf("String()=%q", got)
	}
}

func TestParse_StringRoundTrip(t *testing.T) {
	for _, tok := range []string{"%IX0.1", "%QW10", "%MD954", "%MF3"} {
		loc, err := Parse(tok)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tok, err)
		}
		if loc.String() != tok {
			t.Fatalf("round trip %q -> %q", tok, loc.String())
		}
	}
}
