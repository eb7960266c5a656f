// internal/config/normalize.go
package config

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	srv := &cfg.Bridge.Server
	if srv.Port == 0 {
		srv.Port = 4840
	}
	if srv.IterateMs == 0 {
		srv.IterateMs = 50
	}
	if srv.StopGraceMs == 0 {
		srv.StopGraceMs = 100
	}

	man := &cfg.Bridge.Manifest
	if man.File == "" {
		man.File = "LOCATED_VARIABLES.h"
	}
	if len(man.SearchPaths) == 0 {
		man.SearchPaths = []string{".", "./core", "../core", ".."}
	}

	for ui := range cfg.Bridge.Fieldbus.Units {
		u := &cfg.Bridge.Fieldbus.Units[ui]
		if u.TimeoutMs == 0 {
			u.TimeoutMs = 1000
		}
	}
}
