// internal/located/manifest_test.go
package located

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tamzrod/opcua-bridge/internal/image"
)

func parseText(text string) []Record {
	return ParseManifest(strings.NewReader(text))
}

func TestParseManifest_BasicRecord(t *testing.T) {
	recs := parseText("__LOCATED_VAR(BOOL,__QX0_1,Q,X,0,1)\n")
	if len(recs) != 1 {
		t.Fatalf("seen=%d want 1", len(recs))
	}
	rec := recs[0]
	if rec.Err != nil {
		t.Fatalf("err=%v", rec.Err)
	}
	if rec.Name != "QX0_1" {
		t.Fatalf("name=%q, leading __ not stripped", rec.Name)
	}
	if rec.IECType != "BOOL" {
		t.Fatalf("iec type=%q", rec.IECType)
	}
	want := Location{image.AreaOutput, image.WidthBit, 0, 1}
	if rec.Loc != want {
		t.Fatalf("loc=%+v want %+v", rec.Loc, want)
	}
}

func TestParseManifest_WhitespaceTolerant(t *testing.T) {
	recs := parseText("  __LOCATED_VAR( UINT , __IW5 , I , W , 5 )\n")
	if len(recs) != 1 || recs[0].Err != nil {
		t.Fatalf("recs=%+v", recs)
	}
	if recs[0].Name != "IW5" {
		t.Fatalf("name=%q", recs[0].Name)
	}
	want := Location{image.AreaInput, image.WidthWord, 5, -1}
	if recs[0].Loc != want {
		t.Fatalf("loc=%+v", recs[0].Loc)
	}
}

func TestParseManifest_LinesWithoutMarkerIgnored(t *testing.T) {
	text := `// header comment
#define SOMETHING 1

__LOCATED_VAR(UINT,__IW5,I,W,5)
int unrelated_code;
`
	recs := parseText(text)
	if len(recs) != 1 {
		t.Fatalf("seen=%d want 1", len(recs))
	}
}

func TestParseManifest_FourFieldsIsMalformed(t *testing.T) {
	recs := parseText("__LOCATED_VAR(UINT,__IW5,I,W)\n")
	if len(recs) != 1 {
		t.Fatalf("seen=%d want 1", len(recs))
	}
	if !errors.Is(recs[0].Err, ErrMalformedManifest) {
		t.Fatalf("err=%v, want ErrMalformedManifest", recs[0].Err)
	}
}

func TestParseManifest_FiveFieldsValidForNonBit(t *testing.T) {
	recs := parseText("__LOCATED_VAR(UINT,__QW10,Q,W,10)\n")
	if len(recs) != 1 || recs[0].Err != nil {
		t.Fatalf("recs=%+v", recs)
	}
}

func TestParseManifest_BitWidthNeedsSixFields(t *testing.T) {
	recs := parseText("__LOCATED_VAR(BOOL,__QX0,Q,X,0)\n")
	if len(recs) != 1 {
		t.Fatalf("seen=%d", len(recs))
	}
	if !errors.Is(recs[0].Err, ErrInvalidLocation) {
		t.Fatalf("err=%v, want ErrInvalidLocation", recs[0].Err)
	}
}

func TestParseManifest_BadBitRange(t *testing.T) {
	recs := parseText("__LOCATED_VAR(BOOL,__IX0_8,I,X,0,8)\n")
	if len(recs) != 1 || !errors.Is(recs[0].Err, ErrInvalidLocation) {
		t.Fatalf("recs=%+v", recs)
	}
}

func TestParseManifest_UnbalancedParens(t *testing.T) {
	recs := parseText("__LOCATED_VAR(BOOL,__QX0_1,Q,X,0,1\n")
	if len(recs) != 1 || !errors.Is(recs[0].Err, ErrMalformedManifest) {
		t.Fatalf("recs=%+v", recs)
	}
}

func TestParseManifest_OrderIndependentSet(t *testing.T) {
	a := parseText("__LOCATED_VAR(UINT,__IW5,I,W,5)\n__LOCATED_VAR(BOOL,__QX0_1,Q,X,0,1)\n")
	b := parseText("__LOCATED_VAR(BOOL,__QX0_1,Q,X,0,1)\n__LOCATED_VAR(UINT,__IW5,I,W,5)\n")

	set := func(recs []Record) map[Location]bool {
		m := make(map[Location]bool)
		for _, r := range recs {
			if r.Err == nil {
				m[r.Loc] = true
			}
		}
		return m
	}

	sa, sb := set(a), set(b)
	if len(sa) != 2 || len(sb) != 2 {
		t.Fatalf("sets: %v %v", sa, sb)
	}
	for loc := range sa {
		if !sb[loc] {
			t.Fatalf("location %v missing from second parse", loc)
		}
	}
}

func TestReadManifest_SearchPaths(t *testing.T) {
	dir := t.TempDir()
	core := filepath.Join(dir, "core")
	if err := os.Mkdir(core, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(core, "LOCATED_VARIABLES.h")
	if err := os.WriteFile(path, []byte("__LOCATED_VAR(UINT,__IW5,I,W,5)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	recs, found, err := ReadManifest("LOCATED_VARIABLES.h", []string{dir, core})
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if found != path {
		t.Fatalf("found=%q want %q", found, path)
	}
	if len(recs) != 1 || recs[0].Err != nil {
		t.Fatalf("recs=%+v", recs)
	}
}

func TestReadManifest_NotFound(t *testing.T) {
	_, _, err := ReadManifest("LOCATED_VARIABLES.h", []string{t.TempDir()})
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("err=%v, want ErrManifestNotFound", err)
	}
}
