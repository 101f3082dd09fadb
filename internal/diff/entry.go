// Package diff compares canonical records and produces an ordered, labeled
// list of differences. Given the same two inputs the engine always emits the
// same entries in the same order, which is what makes evidence bundles
// reproducible and overlay matching stable.
package diff

// Label classifies one difference. The set is closed; anything the
// expectation overlay does not claim stays LabelUnlabeled.
type Label string

const (
	// LabelIntentional marks a documented, expected divergence.
	LabelIntentional Label = "intentional"
	// LabelNeedsFollowup marks a difference the candidate toolchain needs a
	// compatibility adjustment to close.
	LabelNeedsFollowup Label = "needs_followup"
	// LabelDefectCandidate marks the candidate toolchain as returning wrong data.
	LabelDefectCandidate Label = "defect_candidate"
	// LabelDefectReference marks the reference toolchain as returning wrong data.
	LabelDefectReference Label = "defect_reference"
	// LabelUnlabeled is the default for unclassified differences.
	LabelUnlabeled Label = "unlabeled"
)

// AllLabels returns the closed label set in report order.
func AllLabels() []Label {
	return []Label{
		LabelDefectCandidate,
		LabelDefectReference,
		LabelIntentional,
		LabelNeedsFollowup,
		LabelUnlabeled,
	}
}

// Valid reports whether l is a member of the closed label set.
func (l Label) Valid() bool {
	switch l {
	case LabelIntentional, LabelNeedsFollowup, LabelDefectCandidate, LabelDefectReference, LabelUnlabeled:
		return true
	}
	return false
}

// Entry is one point of disagreement between the two toolchains for one
// comparison key. A nil side means the key is absent there; both sides are
// never nil. Classification only assigns Label and Reason, the compared
// values are never altered after the entry is created.
type Entry struct {
	Key       string      `json:"key"`
	Reference interface{} `json:"reference"`
	Candidate interface{} `json:"candidate"`
	Label     Label       `json:"label"`
	Reason    string      `json:"reason,omitempty"`
}

func newEntry(key string, reference, candidate interface{}) Entry {
	return Entry{
		Key:       key,
		Reference: reference,
		Candidate: candidate,
		Label:     LabelUnlabeled,
	}
}
