// Package evidence persists run reports as an auditable on-disk bundle:
//
//	<root>/<date>/<target>/<run-id>/
//	  meta.json        run metadata
//	  reference.json   raw + normalized reference output
//	  candidate.json   raw + normalized candidate output
//	  diff.json        labeled diffs with summary counts
//	  diff.md          human-readable diff report
//	  logs/            full per-side process logs
package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/effortless-metrics/mtpcompat/internal/diff"
	"github.com/effortless-metrics/mtpcompat/internal/logger"
	"github.com/effortless-metrics/mtpcompat/internal/report"
)

// Sink writes evidence bundles under Root.
type Sink struct {
	Root string
	log  logger.Logger
	now  func() time.Time
}

// NewSink creates a sink rooted at dir.
func NewSink(dir string, log logger.Logger) *Sink {
	if log == nil {
		log = logger.Nop()
	}
	return &Sink{Root: dir, log: log, now: time.Now}
}

// diffPayload is the diff.json document shape.
type diffPayload struct {
	RunID      string             `json:"run_id"`
	Diffs      []diff.Entry       `json:"diffs"`
	Summary    report.Summary     `json:"summary"`
	WriteTests []report.WriteTest `json:"write_tests,omitempty"`
}

// Write persists the full bundle for one run and returns the run directory.
func (s *Sink) Write(rep *report.Report, referenceLog, candidateLog string) (string, error) {
	runDir := filepath.Join(
		s.Root,
		s.now().UTC().Format("2006-01-02"),
		sanitizeTarget(rep.Meta.Target),
		rep.Meta.RunID,
	)
	if err := os.MkdirAll(filepath.Join(runDir, "logs"), 0755); err != nil {
		return "", fmt.Errorf("creating evidence dir: %w", err)
	}

	files := []struct {
		name string
		data interface{}
	}{
		{"meta.json", rep.Meta},
		{"reference.json", rep.Reference},
		{"candidate.json", rep.Candidate},
		{"diff.json", diffPayload{
			RunID:      rep.Meta.RunID,
			Diffs:      rep.Diffs,
			Summary:    rep.Summary,
			WriteTests: rep.WriteTests,
		}},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(runDir, f.name), f.data); err != nil {
			return "", err
		}
	}

	md, err := os.Create(filepath.Join(runDir, "diff.md"))
	if err != nil {
		return "", fmt.Errorf("creating diff.md: %w", err)
	}
	if err := rep.WriteMarkdown(md); err != nil {
		md.Close()
		return "", err
	}
	if err := md.Close(); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(runDir, "logs", "reference.log"), []byte(referenceLog), 0644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "logs", "candidate.log"), []byte(candidateLog), 0644); err != nil {
		return "", err
	}

	s.log.Info("evidence written", logger.String("dir", runDir))
	return runDir, nil
}

func writeJSON(path string, data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, append(encoded, '\n'), 0644)
}

func sanitizeTarget(target string) string {
	if target == "" {
		return "unknown"
	}
	return strings.ReplaceAll(target, ":", "_")
}
