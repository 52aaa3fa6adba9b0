package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/relayops/modbalance/core/balancer"
	"github.com/relayops/modbalance/core/metrics"
	"github.com/relayops/modbalance/infra/notify"
)

// Config is the full service configuration.
type Config struct {
	Balancer balancer.Config `json:"balancer"`
	Input    InputConfig     `json:"input"`
	Store    StoreConfig     `json:"store"`
	Metrics  metrics.Config  `json:"metrics"`
	Notify   notify.Config   `json:"notify"`
}

// InputConfig locates the collaborator-supplied tables and the output
// directory for the exported reports.
type InputConfig struct {
	InstancesPath string `json:"instances_path"`
	WeeksPath     string `json:"weeks_path"`
	OutputDir     string `json:"output_dir"`
	// Format selects the export format: "csv" or "json".
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *InputConfig) SetDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Format == "" {
		c.Format = "csv"
	}
}

// Validate checks mandatory fields.
func (c InputConfig) Validate() error {
	if c.Format != "csv" && c.Format != "json" {
		return fmt.Errorf("unknown export format %s", c.Format)
	}
	return nil
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	// Path is the SQLite file location; empty disables persistence.
	Path string `json:"path"`
}

// Load reads the configuration from a YAML or JSON file, then applies
// environment overrides of the form MB_section__key.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("MB_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Balancer.SetDefaults()
	cfg.Input.SetDefaults()
	cfg.Notify.SetDefaults()
	if err := cfg.Balancer.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Input.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notify.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
