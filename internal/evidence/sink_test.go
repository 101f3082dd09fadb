package evidence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effortless-metrics/mtpcompat/internal/canon"
	"github.com/effortless-metrics/mtpcompat/internal/diff"
	"github.com/effortless-metrics/mtpcompat/internal/report"
)

func testReport() *report.Report {
	entries := []diff.Entry{
		{Key: "device.model", Reference: "Pixel 7", Candidate: "Pixel7", Label: diff.LabelIntentional, Reason: "spacing"},
	}
	return &report.Report{
		Meta: report.Meta{
			RunID:            "ab12cd34",
			Timestamp:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Target:           "18d1:4ee1",
			ToleranceSeconds: 120,
		},
		Reference: report.SidePayload{
			Raw:    map[string]interface{}{"detect": "raw text"},
			Device: canon.Device{Model: "Pixel 7"},
		},
		Candidate: report.SidePayload{
			Raw:    map[string]interface{}{"probe": map[string]interface{}{"model": "Pixel7"}},
			Device: canon.Device{Model: "Pixel7"},
		},
		Diffs:   entries,
		Summary: report.Summarize(entries),
	}
}

func TestSinkWrite_Layout(t *testing.T) {
	root := t.TempDir()
	s := NewSink(root, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	runDir, err := s.Write(testReport(), "reference log body", "candidate log body")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "2026-03-01", "18d1_4ee1", "ab12cd34"), runDir)
	for _, name := range []string{
		"meta.json", "reference.json", "candidate.json", "diff.json", "diff.md",
		filepath.Join("logs", "reference.log"), filepath.Join("logs", "candidate.log"),
	} {
		_, err := os.Stat(filepath.Join(runDir, name))
		assert.NoError(t, err, name)
	}

	refLog, err := os.ReadFile(filepath.Join(runDir, "logs", "reference.log"))
	require.NoError(t, err)
	assert.Equal(t, "reference log body", string(refLog))
}

func TestSinkWrite_DiffJSON(t *testing.T) {
	s := NewSink(t.TempDir(), nil)

	runDir, err := s.Write(testReport(), "", "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(runDir, "diff.json"))
	require.NoError(t, err)

	var payload struct {
		RunID   string       `json:"run_id"`
		Diffs   []diff.Entry `json:"diffs"`
		Summary struct {
			TotalDiffs int `json:"total_diffs"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "ab12cd34", payload.RunID)
	require.Len(t, payload.Diffs, 1)
	assert.Equal(t, "device.model", payload.Diffs[0].Key)
	assert.Equal(t, 1, payload.Summary.TotalDiffs)
}

func TestSinkWrite_MetaJSON(t *testing.T) {
	s := NewSink(t.TempDir(), nil)

	runDir, err := s.Write(testReport(), "", "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(runDir, "meta.json"))
	require.NoError(t, err)

	var meta report.Meta
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "18d1:4ee1", meta.Target)
	assert.Equal(t, int64(120), meta.ToleranceSeconds)
}

func TestSinkWrite_UnknownTarget(t *testing.T) {
	root := t.TempDir()
	s := NewSink(root, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	rep := testReport()
	rep.Meta.Target = ""

	runDir, err := s.Write(rep, "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2026-03-01", "unknown", "ab12cd34"), runDir)
}
