// internal/bridge/resolve_test.go
package bridge

import (
	"errors"
	"testing"

	"github.com/tamzrod/opcua-bridge/internal/image"
	"github.com/tamzrod/opcua-bridge/internal/located"
	"github.com/tamzrod/opcua-bridge/internal/ua"
)

func mustParse(t *testing.T, token string) located.Location {
	t.Helper()
	loc, err := located.Parse(token)
	if err != nil {
		t.Fatalf("Parse(%q): %v", token, err)
	}
	return loc
}

func TestScalarType_WidthTable(t *testing.T) {
	cases := []struct {
		token string
		typ   ua.TypeID
	}{
		{"%IX0.0", ua.TypeBoolean},
		{"%QB1", ua.TypeByte},
		{"%IW5", ua.TypeUInt16},
		{"%QD2", ua.TypeUInt32},
		{"%ML7", ua.TypeUInt64},
		{"%MR2", ua.TypeFloat},
		{"%MF3", ua.TypeDouble},
	}

	for _, tc := range cases {
		typ, err := scalarType(mustParse(t, tc.token))
		if err != nil {
			t.Errorf("scalarType(%s) err=%v", tc.token, err)
			continue
		}
		if typ != tc.typ {
			t.Errorf("scalarType(%s)=%v want %v", tc.token, typ, tc.typ)
		}
	}
}

func TestScalarType_MemoryBitAndByteUnsupported(t *testing.T) {
	for _, token := range []string{"%MX0.0", "%MB0"} {
		if _, err := scalarType(mustParse(t, token)); !errors.Is(err, ErrUnsupported) {
			t.Errorf("scalarType(%s) err=%v, want ErrUnsupported", token, err)
		}
	}
}

func TestResolve_Unavailable(t *testing.T) {
	img := image.New()
	b := New(img, nil, nil, Options{})

	_, _, err := b.resolve(mustParse(t, "%QL7"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err=%v, want ErrUnavailable", err)
	}
}

func TestResolve_PresentSlot(t *testing.T) {
	img := image.New()
	img.AllocWord(image.AreaInput, 5)
	b := New(img, nil, nil, Options{})

	cell, typ, err := b.resolve(mustParse(t, "%IW5"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if typ != ua.TypeUInt16 || cell.Type() != ua.TypeUInt16 {
		t.Fatalf("typ=%v cell=%v", typ, cell.Type())
	}
}
