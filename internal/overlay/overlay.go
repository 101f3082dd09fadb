// Package overlay loads per-target expectation overlays and classifies diff
// entries against them. An overlay pre-labels differences that are known:
// documented divergences, pending compatibility work, and recorded defects.
package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Rule maps one key pattern to a label and a human-readable reason. A
// pattern matches a diff key when the key equals it exactly or starts with
// the pattern followed by a dot.
type Rule struct {
	Key    string `yaml:"key" json:"key" validate:"required"`
	Label  string `yaml:"label,omitempty" json:"label,omitempty" validate:"omitempty,oneof=intentional needs_followup defect_candidate defect_reference"`
	Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Tolerances carries per-target diff tolerance overrides.
type Tolerances struct {
	TimestampSeconds *int64 `yaml:"timestamp_seconds" json:"timestamp_seconds,omitempty" validate:"omitempty,gte=0"`
}

// Overlay is one target's expectation document. The three rule sections are
// matched in declaration order within a section and in the fixed section
// precedence intentional > needs-followup > known-defect. ExpectedFailures
// names operations (not diff keys) known to fail on this target; it is
// recorded in run metadata and never matched against diffs.
type Overlay struct {
	IntentionalDifferences []Rule     `yaml:"intentional_differences" json:"intentional_differences,omitempty" validate:"dive"`
	NeedsFollowup          []Rule     `yaml:"needs_followup" json:"needs_followup,omitempty" validate:"dive"`
	KnownDefects           []Rule     `yaml:"known_defects" json:"known_defects,omitempty" validate:"dive"`
	ExpectedFailures       []string   `yaml:"expected_failures" json:"expected_failures,omitempty"`
	Tolerances             Tolerances `yaml:"tolerances" json:"tolerances,omitempty"`
}

var validate = validator.New()

// Empty returns an overlay with no rules. Classifying against it leaves
// every entry unlabeled, which is a valid "needs investigation" outcome.
func Empty() *Overlay {
	return &Overlay{}
}

// Load reads and validates an overlay document. A malformed document or an
// out-of-range tolerance is a hard configuration error: it is surfaced
// before the pipeline runs rather than absorbed into the diff output.
func Load(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overlay %s: %w", path, err)
	}

	var ov Overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parsing overlay %s: %w", path, err)
	}
	if err := validate.Struct(&ov); err != nil {
		return nil, fmt.Errorf("invalid overlay %s: %w", path, err)
	}
	return &ov, nil
}

// LoadForTarget looks up the overlay for a target identity (vid:pid) under
// dir, accepting both vid_pid.yml and vid:pid.yml naming. A missing file is
// not an error: the run proceeds with an empty overlay. Returns the path
// actually loaded, or "" when none was found.
func LoadForTarget(dir, target string) (*Overlay, string, error) {
	if target == "" {
		return Empty(), "", nil
	}

	candidates := []string{
		filepath.Join(dir, strings.ReplaceAll(target, ":", "_")+".yml"),
		filepath.Join(dir, target+".yml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		ov, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return ov, path, nil
	}
	return Empty(), "", nil
}

// TimestampTolerance returns the overlay's timestamp tolerance override, or
// fallback when the overlay does not set one.
func (o *Overlay) TimestampTolerance(fallback int64) int64 {
	if o != nil && o.Tolerances.TimestampSeconds != nil {
		return *o.Tolerances.TimestampSeconds
	}
	return fallback
}
