// Package matrix regenerates the device compatibility matrix document from
// the quirks database.
package matrix

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Match identifies the devices a quirk entry applies to.
type Match struct {
	VID string `json:"vid"`
	PID string `json:"pid"`
}

// Quirk is one device entry in the quirks database.
type Quirk struct {
	ID         string `json:"id"`
	DeviceName string `json:"deviceName,omitempty"`
	Match      Match  `json:"match"`
	Category   string `json:"category,omitempty"`
	Status     string `json:"status,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

// Database is the quirks document.
type Database struct {
	Entries []Quirk `json:"entries"`
}

// Load reads the quirks database from path.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading quirks database: %w", err)
	}
	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parsing quirks database %s: %w", path, err)
	}
	return &db, nil
}

// WriteMarkdown renders the compatibility matrix: entries grouped by
// category, each category a table sorted by device name.
func (db *Database) WriteMarkdown(w io.Writer) error {
	byCategory := make(map[string][]Quirk)
	vids := make(map[string]bool)
	for _, e := range db.Entries {
		category := e.Category
		if category == "" {
			category = "unknown"
		}
		byCategory[category] = append(byCategory[category], e)
		vids[e.Match.VID] = true
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("# Compatibility Matrix\n\n")
	b.WriteString("Auto-generated from the quirks database. Do not edit manually.\n\n")
	fmt.Fprintf(&b, "**%d** device entries across **%d** vendor IDs and **%d** categories.\n\n",
		len(db.Entries), len(vids), len(byCategory))

	for _, category := range categories {
		entries := byCategory[category]
		fmt.Fprintf(&b, "## %s (%d)\n\n", categoryTitle(category), len(entries))
		b.WriteString("| Device | VID:PID | Status | Confidence |\n")
		b.WriteString("|--------|---------|--------|------------|\n")

		sort.Slice(entries, func(i, j int) bool {
			return displayName(entries[i]) < displayName(entries[j])
		})
		for _, e := range entries {
			fmt.Fprintf(&b, "| %s | %s:%s | %s | %s |\n",
				displayName(e), e.Match.VID, e.Match.PID,
				orUnknown(e.Status), orUnknown(e.Confidence))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func displayName(q Quirk) string {
	if q.DeviceName != "" {
		return q.DeviceName
	}
	return q.ID
}

func categoryTitle(category string) string {
	words := strings.Split(strings.ReplaceAll(category, "-", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
