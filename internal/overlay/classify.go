package overlay

import (
	"fmt"
	"strings"

	"github.com/effortless-metrics/mtpcompat/internal/diff"
)

// compiledRule is one pattern with its effective label, in match order.
type compiledRule struct {
	pattern string
	label   diff.Label
	reason  string
}

// compile flattens the overlay's sections into a single ordered rule list.
// Section order is the fixed precedence; declaration order is preserved
// within a section. The intentional and needs-followup sections carry an
// implied label; known-defect rules must say explicitly which side is wrong.
// A known-defect rule without a label is an overlay-configuration mistake:
// matching entries stay unlabeled, with the reason recording why, instead of
// failing the run.
func (o *Overlay) compile() []compiledRule {
	rules := make([]compiledRule, 0,
		len(o.IntentionalDifferences)+len(o.NeedsFollowup)+len(o.KnownDefects))

	appendSection := func(section []Rule, implied diff.Label) {
		for _, r := range section {
			if r.Key == "" {
				continue
			}
			label := implied
			reason := r.Reason
			if r.Label != "" {
				label = diff.Label(r.Label)
			}
			if label == "" {
				label = diff.LabelUnlabeled
				reason = fmt.Sprintf("known_defects entry %q is missing a defect label", r.Key)
			}
			rules = append(rules, compiledRule{pattern: r.Key, label: label, reason: reason})
		}
	}

	appendSection(o.IntentionalDifferences, diff.LabelIntentional)
	appendSection(o.NeedsFollowup, diff.LabelNeedsFollowup)
	appendSection(o.KnownDefects, "")

	return rules
}

func (r compiledRule) matches(key string) bool {
	return key == r.pattern || strings.HasPrefix(key, r.pattern+".")
}

// Classify labels each entry with the first rule whose pattern matches its
// key; matching stops at the first hit, there are no merge semantics.
// Entries matching nothing are left untouched, which keeps classification
// idempotent: re-running with the same overlay never changes a label or
// reason. The compared values are never modified.
func Classify(entries []diff.Entry, o *Overlay) []diff.Entry {
	if o == nil {
		return entries
	}
	rules := o.compile()
	for i := range entries {
		for _, rule := range rules {
			if rule.matches(entries[i].Key) {
				entries[i].Label = rule.label
				entries[i].Reason = rule.reason
				break
			}
		}
	}
	return entries
}
