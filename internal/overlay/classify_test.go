package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effortless-metrics/mtpcompat/internal/diff"
)

func entry(key string) diff.Entry {
	return diff.Entry{Key: key, Reference: "a", Candidate: "b", Label: diff.LabelUnlabeled}
}

func TestClassify_SectionLabels(t *testing.T) {
	ov := &Overlay{
		IntentionalDifferences: []Rule{{Key: "device.friendly_name", Reason: "redacted"}},
		NeedsFollowup:          []Rule{{Key: "device.firmware"}},
		KnownDefects: []Rule{
			{Key: "file.DCIM/a.jpg", Label: "defect_candidate", Reason: "dropped"},
			{Key: "file.DCIM/b.jpg", Label: "defect_reference"},
		},
	}
	entries := []diff.Entry{
		entry("device.friendly_name"),
		entry("device.firmware"),
		entry("file.DCIM/a.jpg"),
		entry("file.DCIM/b.jpg"),
		entry("device.model"),
	}

	got := Classify(entries, ov)

	assert.Equal(t, diff.LabelIntentional, got[0].Label)
	assert.Equal(t, "redacted", got[0].Reason)
	assert.Equal(t, diff.LabelNeedsFollowup, got[1].Label)
	assert.Equal(t, diff.LabelDefectCandidate, got[2].Label)
	assert.Equal(t, diff.LabelDefectReference, got[3].Label)
	assert.Equal(t, diff.LabelUnlabeled, got[4].Label)
	assert.Empty(t, got[4].Reason)
}

func TestClassify_PrefixMatch(t *testing.T) {
	ov := &Overlay{IntentionalDifferences: []Rule{{Key: "device.storages", Reason: "layout differs"}}}
	entries := []diff.Entry{
		entry("device.storages.Internal storage.capacity_bytes"),
		entry("device.storages"),
		entry("device.storages_other"),
	}

	got := Classify(entries, ov)

	assert.Equal(t, diff.LabelIntentional, got[0].Label)
	assert.Equal(t, diff.LabelIntentional, got[1].Label)
	// Prefix matching is dot-delimited, not raw string prefix.
	assert.Equal(t, diff.LabelUnlabeled, got[2].Label)
}

func TestClassify_SectionPrecedence(t *testing.T) {
	ov := &Overlay{
		IntentionalDifferences: []Rule{{Key: "device.model"}},
		KnownDefects:           []Rule{{Key: "device.model", Label: "defect_candidate"}},
	}

	got := Classify([]diff.Entry{entry("device.model")}, ov)

	assert.Equal(t, diff.LabelIntentional, got[0].Label)
}

func TestClassify_FirstMatchWithinSection(t *testing.T) {
	ov := &Overlay{
		IntentionalDifferences: []Rule{
			{Key: "file", Reason: "first"},
			{Key: "file.a.txt", Reason: "second"},
		},
	}

	got := Classify([]diff.Entry{entry("file.a.txt")}, ov)

	assert.Equal(t, "first", got[0].Reason)
}

func TestClassify_KnownDefectWithoutLabel(t *testing.T) {
	ov := &Overlay{KnownDefects: []Rule{{Key: "file.a.txt", Reason: "ignored"}}}

	got := Classify([]diff.Entry{entry("file.a.txt")}, ov)

	assert.Equal(t, diff.LabelUnlabeled, got[0].Label)
	assert.Contains(t, got[0].Reason, "missing a defect label")
}

func TestClassify_Idempotent(t *testing.T) {
	ov := &Overlay{
		IntentionalDifferences: []Rule{{Key: "device.friendly_name", Reason: "redacted"}},
		KnownDefects:           []Rule{{Key: "file.a.txt", Label: "defect_candidate"}},
	}
	entries := []diff.Entry{entry("device.friendly_name"), entry("file.a.txt"), entry("device.model")}

	once := Classify(entries, ov)
	twice := Classify(once, ov)

	assert.Equal(t, once, twice)
}

func TestClassify_NilAndEmptyOverlay(t *testing.T) {
	entries := []diff.Entry{entry("device.model")}

	got := Classify(entries, nil)
	assert.Equal(t, diff.LabelUnlabeled, got[0].Label)

	got = Classify(entries, Empty())
	require.Len(t, got, 1)
	assert.Equal(t, diff.LabelUnlabeled, got[0].Label)
}

func TestClassify_DoesNotTouchValues(t *testing.T) {
	ov := &Overlay{IntentionalDifferences: []Rule{{Key: "device.model"}}}

	got := Classify([]diff.Entry{entry("device.model")}, ov)

	assert.Equal(t, "a", got[0].Reference)
	assert.Equal(t, "b", got[0].Candidate)
}
