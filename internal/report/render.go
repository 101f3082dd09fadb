package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/effortless-metrics/mtpcompat/internal/diff"
)

const cellLimit = 120

// WriteMarkdown renders the human-readable diff report (the evidence
// bundle's diff.md): run header, per-label summary, the full ordered
// difference table and any write-test outcomes.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var b strings.Builder

	target := r.Meta.Target
	if target == "" {
		target = "auto-detect"
	}

	b.WriteString("# MTP Compatibility Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** `%s`  \n", r.Meta.RunID)
	fmt.Fprintf(&b, "**Date:** %s  \n", r.Meta.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Device:** `%s`  \n", target)
	fmt.Fprintf(&b, "**Timestamp tolerance:** %ds  \n", r.Meta.ToleranceSeconds)
	fmt.Fprintf(&b, "**Total diffs:** %d\n\n", r.Summary.TotalDiffs)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Label | Count |\n")
	b.WriteString("|-------|------:|\n")
	for _, label := range diff.AllLabels() {
		fmt.Fprintf(&b, "| `%s` | %d |\n", label, r.Summary.ByLabel[label])
	}
	b.WriteString("\n")

	if len(r.Diffs) > 0 {
		b.WriteString("## Differences\n\n")
		b.WriteString("| Key | Reference value | Candidate value | Label | Reason |\n")
		b.WriteString("|-----|-----------------|-----------------|-------|--------|\n")
		for _, e := range sortedDiffs(r.Diffs) {
			fmt.Fprintf(&b, "| `%s` | %s | %s | `%s` | %s |\n",
				e.Key, cell(e.Reference), cell(e.Candidate), e.Label, cell(e.Reason))
		}
		b.WriteString("\n")
	}

	if len(r.WriteTests) > 0 {
		b.WriteString("## Write Tests\n\n")
		for _, wt := range r.WriteTests {
			status := "PASS"
			if !wt.Success {
				status = "FAIL"
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", wt.Name, status)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n*Generated by mtpcompat*\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTable renders the difference table for the terminal.
func (r *Report) WriteTable(w io.Writer) {
	if len(r.Diffs) == 0 {
		fmt.Fprintln(w, "No differences found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Reference", "Candidate", "Label", "Reason"})
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator(" ")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, e := range sortedDiffs(r.Diffs) {
		table.Append([]string{
			e.Key,
			cell(e.Reference),
			cell(e.Candidate),
			string(e.Label),
			e.Reason,
		})
	}
	table.Render()
}

// sortedDiffs returns the entries ordered by key for presentation. The
// engine's own order is already deterministic; sorting here keeps the
// rendered tables stable even when device and file sections interleave.
func sortedDiffs(entries []diff.Entry) []diff.Entry {
	sorted := make([]diff.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	return sorted
}

func cell(v interface{}) string {
	var s string
	switch val := v.(type) {
	case nil:
		s = "absent"
	case string:
		s = val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			s = fmt.Sprintf("%v", val)
		} else {
			s = string(data)
		}
	}
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) > cellLimit {
		s = s[:cellLimit]
	}
	return s
}
