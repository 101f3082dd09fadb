// Package report assembles the run's root aggregate: metadata, both sides'
// raw and canonical payloads, the labeled diff sequence, and summary counts.
// The report is created once per run, handed whole to the evidence sink, and
// carries everything needed to reproduce the verdict.
package report

import (
	"time"

	"github.com/effortless-metrics/mtpcompat/internal/canon"
	"github.com/effortless-metrics/mtpcompat/internal/diff"
)

// Meta identifies one harness run.
type Meta struct {
	RunID            string            `json:"run_id"`
	Timestamp        time.Time         `json:"timestamp"`
	Target           string            `json:"target,omitempty"`
	ToleranceSeconds int64             `json:"ts_tolerance_seconds"`
	AllowWrite       bool              `json:"allow_write"`
	OverlayPath      string            `json:"overlay,omitempty"`
	ExpectedFailures []string          `json:"expected_failures,omitempty"`
	ToolVersions     map[string]string `json:"tool_versions,omitempty"`
}

// SidePayload is one toolchain's contribution: the raw structured output as
// collected plus the canonical records derived from it.
type SidePayload struct {
	Raw    map[string]interface{} `json:"raw"`
	Device canon.Device           `json:"normalized_device"`
	Files  []canon.FileEntry      `json:"normalized_files"`
}

// WriteTest records the outcome of one controlled write check.
type WriteTest struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
}

// Summary is the per-label tally over the diff sequence. Every label of the
// closed set is present, zero counts included, so consumers never need to
// probe for missing keys.
type Summary struct {
	TotalDiffs int                `json:"total_diffs"`
	ByLabel    map[diff.Label]int `json:"by_label"`
}

// Report is the run's root aggregate.
type Report struct {
	Meta       Meta        `json:"meta"`
	Reference  SidePayload `json:"reference"`
	Candidate  SidePayload `json:"candidate"`
	Diffs      []diff.Entry `json:"diffs"`
	Summary    Summary     `json:"summary"`
	WriteTests []WriteTest `json:"write_tests,omitempty"`
}

// Summarize tallies entries per label.
func Summarize(entries []diff.Entry) Summary {
	byLabel := make(map[diff.Label]int, len(diff.AllLabels()))
	for _, label := range diff.AllLabels() {
		byLabel[label] = 0
	}
	for _, e := range entries {
		byLabel[e.Label]++
	}
	return Summary{TotalDiffs: len(entries), ByLabel: byLabel}
}

// NeedsInvestigation reports whether the run left unresolved differences:
// anything unlabeled, or any confirmed candidate defect. This drives the
// CLI's exit status but the report itself never terminates anything.
func (r *Report) NeedsInvestigation() bool {
	return r.Summary.ByLabel[diff.LabelUnlabeled] > 0 ||
		r.Summary.ByLabel[diff.LabelDefectCandidate] > 0
}

// WriteTestsPassed reports whether every write check succeeded. True when no
// write tests ran.
func (r *Report) WriteTestsPassed() bool {
	for _, wt := range r.WriteTests {
		if !wt.Success {
			return false
		}
	}
	return true
}
