// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Manifest  ManifestConfig  `yaml:"manifest"`
	Publisher PublisherConfig `yaml:"publisher"`
	Fieldbus  FieldbusConfig  `yaml:"fieldbus"`
}

// ---- SERVER ----

type ServerConfig struct {
	Port        int `yaml:"port"`
	IterateMs   int `yaml:"iterate_ms"`
	StopGraceMs int `yaml:"stop_grace_ms"`
}

// ---- MANIFEST ----

type ManifestConfig struct {
	File        string   `yaml:"file"`
	SearchPaths []string `yaml:"search_paths"`
}

// ---- PUBLISHER ----

type PublisherConfig struct {
	SuppressReadValue bool `yaml:"suppress_read_value"`
}

// ---- FIELDBUS (optional ingress) ----

type FieldbusConfig struct {
	Units []UnitConfig `yaml:"units"`
}

type UnitConfig struct {
	ID         string       `yaml:"id"`
	Endpoint   string       `yaml:"endpoint"`
	UnitID     uint8        `yaml:"unit_id"`
	TimeoutMs  int          `yaml:"timeout_ms"`
	IntervalMs int          `yaml:"interval_ms"`
	Reads      []ReadConfig `yaml:"reads"`
}

// ReadConfig is one poll geometry plus its destination run of
// process-image slots.
type ReadConfig struct {
	FC       uint8  `yaml:"fc"`
	Address  uint16 `yaml:"address"`
	Quantity uint16 `yaml:"quantity"`

	Area  string `yaml:"area"`  // destination area letter (I/Q/M)
	Width string `yaml:"width"` // destination width letter (X for bit FCs, W for register FCs)
	Index int    `yaml:"index"` // first destination slot index
}

// Load reads and decodes a config file. It performs no validation.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &cfg, nil
}
