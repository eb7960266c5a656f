// internal/located/manifest.go
package located

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tamzrod/opcua-bridge/internal/image"
)

// ErrMalformedManifest marks a line that carries the macro marker but
// cannot be decomposed into enough fields.
var ErrMalformedManifest = errors.New("located: malformed manifest line")

// ErrManifestNotFound is returned when no search path holds the manifest.
var ErrManifestNotFound = errors.New("located: manifest not found")

// marker is the macro the compiler emits once per located variable.
const marker = "__LOCATED_VAR("

// Record is one manifest line that carried the marker. Err is nil for a
// usable record, otherwise it wraps ErrMalformedManifest or
// ErrInvalidLocation. Per-record failures never abort ingestion.
type Record struct {
	Line    int
	IECType string
	Name    string
	Loc     Location
	Err     error
}

// ParseManifest scans manifest text for __LOCATED_VAR entries. Lines
// without the marker are ignored entirely; the returned slice has one
// record per marker line, so len(records) is the "seen" count.
func ParseManifest(r io.Reader) []Record {
	var recs []Record

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if !strings.Contains(line, marker) {
			continue
		}
		recs = append(recs, parseLine(lineNo, line))
	}

	return recs
}

func parseLine(lineNo int, line string) Record {
	rec := Record{Line: lineNo}

	lpar := strings.IndexByte(line, '(')
	rpar := strings.LastIndexByte(line, ')')
	if lpar < 0 || rpar < lpar {
		rec.Err = fmt.Errorf("%w: line %d: unbalanced parentheses", ErrMalformedManifest, lineNo)
		return rec
	}

	fields := strings.Split(line[lpar+1:rpar], ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 5 {
		rec.Err = fmt.Errorf("%w: line %d: %d fields", ErrMalformedManifest, lineNo, len(fields))
		return rec
	}

	rec.IECType = fields[0]
	rec.Name = strings.TrimPrefix(fields[1], "__")

	if fields[2] == "" || fields[3] == "" {
		rec.Err = fmt.Errorf("%w: line %d: empty area or width", ErrMalformedManifest, lineNo)
		return rec
	}
	area := fields[2][0]
	width := fields[3][0]

	// Compose the canonical token and reuse the token parser, so the
	// manifest path and direct location lookups share one grammar.
	var token string
	if image.Width(width) == image.WidthBit {
		if len(fields) < 6 {
			rec.Err = fmt.Errorf("%w: line %d: X width needs a bit field", ErrInvalidLocation, lineNo)
			return rec
		}
		token = fmt.Sprintf("%%%c%c%s.%s", area, width, fields[4], fields[5])
	} else {
		token = fmt.Sprintf("%%%c%c%s", area, width, fields[4])
	}

	loc, err := Parse(token)
	if err != nil {
		rec.Err = fmt.Errorf("line %d: %w", lineNo, err)
		return rec
	}

	rec.Loc = loc
	return rec
}

// FindManifest probes the search paths in order and returns the first
// existing manifest file path.
func FindManifest(name string, searchPaths []string) (string, error) {
	for _, dir := range searchPaths {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %v", ErrManifestNotFound, name, searchPaths)
}

// ReadManifest locates and parses the manifest in one step. The returned
// path reports which candidate won, for the startup log.
func ReadManifest(name string, searchPaths []string) ([]Record, string, error) {
	path, err := FindManifest(name, searchPaths)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("located: open manifest: %w", err)
	}
	defer f.Close()
	return ParseManifest(f), path, nil
}
