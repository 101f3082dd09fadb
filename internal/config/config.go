// Package config handles harness configuration: defaults, optional YAML
// file, validation. Everything here is explicit input to the pipeline entry
// point; the core packages carry no ambient state.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/effortless-metrics/mtpcompat/internal/collect"
	"github.com/effortless-metrics/mtpcompat/internal/logger"
)

// Config is the full harness configuration.
type Config struct {
	// Device targets a specific device by vid:pid; empty means first found.
	Device string `yaml:"device" json:"device"`
	// TimeoutSeconds bounds each external tool invocation.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds" validate:"gt=0"`
	// CandidateExtraTimeoutSeconds is added on the candidate side, which may
	// need to build before its first run.
	CandidateExtraTimeoutSeconds int `yaml:"candidate_extra_timeout_seconds" json:"candidate_extra_timeout_seconds" validate:"gte=0"`
	// TimestampToleranceSeconds is the default mtime diff tolerance; the
	// per-target overlay may override it.
	TimestampToleranceSeconds int64 `yaml:"ts_tolerance_seconds" json:"ts_tolerance_seconds" validate:"gte=0"`

	AllowWrite      bool   `yaml:"allow_write" json:"allow_write"`
	EvidenceDir     string `yaml:"evidence_dir" json:"evidence_dir" validate:"required"`
	ExpectationsDir string `yaml:"expectations_dir" json:"expectations_dir" validate:"required"`

	Reference collect.ReferenceCommands `yaml:"reference" json:"reference"`
	// CandidateCommand is the candidate CLI invocation prefix.
	CandidateCommand []string `yaml:"candidate_command" json:"candidate_command" validate:"min=1"`

	Logging logger.Config `yaml:"logging" json:"logging"`
}

var validate = validator.New()

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		TimeoutSeconds:               120,
		CandidateExtraTimeoutSeconds: 60,
		TimestampToleranceSeconds:    120,
		EvidenceDir:                  "evidence",
		ExpectationsDir:              "compat/expectations",
		Reference:                    collect.DefaultReferenceCommands(),
		CandidateCommand:             []string{"swiftmtp"},
		Logging: logger.Config{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load returns the default configuration overlaid with the YAML file at
// path when one is given. Validation failures are configuration errors
// surfaced before anything runs.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration's bounds.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
