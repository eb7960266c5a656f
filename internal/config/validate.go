// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	srv := cfg.Bridge.Server

	if srv.Port < 0 || srv.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", srv.Port)
	}
	if srv.IterateMs < 0 {
		return fmt.Errorf("config: server.iterate_ms must be >= 0")
	}
	if srv.StopGraceMs < 0 {
		return fmt.Errorf("config: server.stop_grace_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// FIELDBUS UNITS
	// ------------------------------------------------------------

	type span struct {
		start int
		end   int
		unit  string
	}

	// key = area | width; all units feed the same image
	spans := make(map[string][]span)
	seenIDs := make(map[string]struct{})

	for _, u := range cfg.Bridge.Fieldbus.Units {
		if u.ID == "" {
			return fmt.Errorf("config: fieldbus unit id required")
		}
		if _, dup := seenIDs[u.ID]; dup {
			return fmt.Errorf("config: duplicate fieldbus unit id %q", u.ID)
		}
		seenIDs[u.ID] = struct{}{}

		if u.Endpoint == "" {
			return fmt.Errorf("config: unit %q: endpoint required", u.ID)
		}
		if u.IntervalMs <= 0 {
			return fmt.Errorf("config: unit %q: interval_ms must be > 0", u.ID)
		}
		if u.TimeoutMs < 0 {
			return fmt.Errorf("config: unit %q: timeout_ms must be >= 0", u.ID)
		}
		if len(u.Reads) == 0 {
			return fmt.Errorf("config: unit %q: at least one read required", u.ID)
		}

		for _, r := range u.Reads {
			if r.Quantity == 0 {
				return fmt.Errorf("config: unit %q: read quantity must be > 0", u.ID)
			}

			switch r.FC {
			case 1, 2:
				if r.Width != "X" {
					return fmt.Errorf(
						"config: unit %q: fc %d delivers bits, width must be X, got %q",
						u.ID, r.FC, r.Width,
					)
				}
			case 3, 4:
				if r.Width != "W" {
					return fmt.Errorf(
						"config: unit %q: fc %d delivers registers, width must be W, got %q",
						u.ID, r.FC, r.Width,
					)
				}
			default:
				return fmt.Errorf("config: unit %q: unsupported fc %d", u.ID, r.FC)
			}

			switch r.Area {
			case "I", "Q":
			case "M":
				if r.Width == "X" {
					return fmt.Errorf("config: unit %q: area M carries no bit slots", u.ID)
				}
			default:
				return fmt.Errorf("config: unit %q: unknown area %q", u.ID, r.Area)
			}

			if r.Index < 0 {
				return fmt.Errorf("config: unit %q: index must be >= 0", u.ID)
			}

			start := r.Index
			end := r.Index + int(r.Quantity) - 1
			if r.Width == "X" {
				// bit blocks pack eight bits per slot index
				end = r.Index + (int(r.Quantity)-1)/8
			}
			key := r.Area + "|" + r.Width

			for _, s := range spans[key] {
				// overlap check (inclusive)
				if !(end < s.start || start > s.end) {
					return fmt.Errorf(
						"config: destination overlap: area=%s width=%s range=%d-%d (unit %q) overlaps with unit=%q range=%d-%d",
						r.Area, r.Width, start, end, u.ID, s.unit, s.start, s.end,
					)
				}
			}

			spans[key] = append(spans[key], span{start: start, end: end, unit: u.ID})
		}
	}

	return nil
}
