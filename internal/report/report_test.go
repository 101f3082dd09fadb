package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effortless-metrics/mtpcompat/internal/diff"
)

func TestSummarize(t *testing.T) {
	entries := []diff.Entry{
		{Key: "device.model", Label: diff.LabelIntentional},
		{Key: "device.firmware", Label: diff.LabelIntentional},
		{Key: "file.a.txt", Label: diff.LabelDefectCandidate},
		{Key: "file.b.txt", Label: diff.LabelUnlabeled},
	}

	s := Summarize(entries)

	assert.Equal(t, 4, s.TotalDiffs)
	assert.Equal(t, 2, s.ByLabel[diff.LabelIntentional])
	assert.Equal(t, 1, s.ByLabel[diff.LabelDefectCandidate])
	assert.Equal(t, 1, s.ByLabel[diff.LabelUnlabeled])

	// Zero counts are materialized for every label.
	require.Len(t, s.ByLabel, len(diff.AllLabels()))
	assert.Equal(t, 0, s.ByLabel[diff.LabelNeedsFollowup])
	assert.Equal(t, 0, s.ByLabel[diff.LabelDefectReference])
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.TotalDiffs)
	require.Len(t, s.ByLabel, len(diff.AllLabels()))
}

func TestNeedsInvestigation(t *testing.T) {
	tests := []struct {
		name    string
		entries []diff.Entry
		want    bool
	}{
		{"No diffs", nil, false},
		{"All intentional", []diff.Entry{{Label: diff.LabelIntentional}}, false},
		{"Needs followup only", []diff.Entry{{Label: diff.LabelNeedsFollowup}}, false},
		{"Reference defect only", []diff.Entry{{Label: diff.LabelDefectReference}}, false},
		{"Unlabeled", []diff.Entry{{Label: diff.LabelUnlabeled}}, true},
		{"Candidate defect", []diff.Entry{{Label: diff.LabelDefectCandidate}}, true},
		{"Mixed", []diff.Entry{{Label: diff.LabelIntentional}, {Label: diff.LabelUnlabeled}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{Diffs: tt.entries, Summary: Summarize(tt.entries)}
			assert.Equal(t, tt.want, r.NeedsInvestigation())
		})
	}
}

func TestWriteTestsPassed(t *testing.T) {
	r := &Report{}
	assert.True(t, r.WriteTestsPassed(), "no write tests counts as passing")

	r.WriteTests = []WriteTest{{Name: "candidate push", Success: true}}
	assert.True(t, r.WriteTestsPassed())

	r.WriteTests = append(r.WriteTests, WriteTest{Name: "reference push", Success: false})
	assert.False(t, r.WriteTestsPassed())
}

func TestWriteMarkdown(t *testing.T) {
	entries := []diff.Entry{
		{Key: "file.a.txt", Reference: nil, Candidate: map[string]interface{}{"size_bytes": 7}, Label: diff.LabelUnlabeled},
		{Key: "device.model", Reference: "Pixel|7", Candidate: "Pixel 7", Label: diff.LabelIntentional, Reason: "naming"},
	}
	r := &Report{
		Meta: Meta{
			RunID:            "ab12cd34",
			Timestamp:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Target:           "18d1:4ee1",
			ToleranceSeconds: 120,
		},
		Diffs:      entries,
		Summary:    Summarize(entries),
		WriteTests: []WriteTest{{Name: "candidate push", Success: false}},
	}

	var b strings.Builder
	require.NoError(t, r.WriteMarkdown(&b))
	out := b.String()

	assert.Contains(t, out, "# MTP Compatibility Report")
	assert.Contains(t, out, "`ab12cd34`")
	assert.Contains(t, out, "2026-03-01T12:00:00Z")
	assert.Contains(t, out, "`18d1:4ee1`")
	assert.Contains(t, out, "**Total diffs:** 2")

	// Entries render sorted by key, nil renders as absent, pipes are escaped.
	assert.Less(t, strings.Index(out, "device.model"), strings.Index(out, "file.a.txt"))
	assert.Contains(t, out, "absent")
	assert.Contains(t, out, `Pixel\|7`)
	assert.Contains(t, out, "- **candidate push**: FAIL")
}

func TestWriteMarkdown_NoTarget(t *testing.T) {
	r := &Report{Summary: Summarize(nil)}

	var b strings.Builder
	require.NoError(t, r.WriteMarkdown(&b))

	assert.Contains(t, b.String(), "auto-detect")
	assert.NotContains(t, b.String(), "## Differences")
}

func TestWriteTable(t *testing.T) {
	r := &Report{Summary: Summarize(nil)}

	var b strings.Builder
	r.WriteTable(&b)
	assert.Contains(t, b.String(), "No differences found")

	entries := []diff.Entry{{Key: "device.model", Reference: "a", Candidate: "b", Label: diff.LabelUnlabeled}}
	r = &Report{Diffs: entries, Summary: Summarize(entries)}

	b.Reset()
	r.WriteTable(&b)
	assert.Contains(t, b.String(), "device.model")
	assert.Contains(t, b.String(), "unlabeled")
}

func TestCellTruncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	assert.Len(t, cell(long), cellLimit)
	assert.Equal(t, "absent", cell(nil))
	assert.Equal(t, "42", cell(42))
}
