package diff

import (
	"reflect"
	"sort"

	"github.com/effortless-metrics/mtpcompat/internal/canon"
)

// Tolerance is the per-field-type comparison policy. Timestamp fields
// compare within TimestampSeconds instead of exactly; zero means exact match
// required. The value is supplied by the caller and may be overridden per
// target by the expectation overlay, so it is a parameter here, never a
// constant.
type Tolerance struct {
	TimestampSeconds int64
	timestampKeys    map[string]bool
}

// NewTolerance returns a tolerance policy with the default tolerant field
// set (mtime) and the given timestamp window in seconds.
func NewTolerance(seconds int64) Tolerance {
	return Tolerance{
		TimestampSeconds: seconds,
		timestampKeys:    map[string]bool{"mtime": true},
	}
}

func (t Tolerance) isTimestampKey(key string) bool {
	return t.timestampKeys[key]
}

func (t Tolerance) within(a, b int64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= t.TimestampSeconds
}

// ScalarRecord compares two flat records field by field and returns one
// entry per disagreement. The union of field names is visited in
// lexicographic order. Timestamp fields use the tolerance window and are
// only compared when both sides report a value; everything else compares
// strictly, with absence on one side counting as a difference.
func ScalarRecord(prefix string, reference, candidate map[string]interface{}, tol Tolerance) []Entry {
	entries := make([]Entry, 0)

	for _, key := range unionKeys(reference, candidate) {
		refVal, refOK := reference[key]
		candVal, candOK := candidate[key]

		if tol.isTimestampKey(key) {
			refTS, refIsTS := asInt64(refVal)
			candTS, candIsTS := asInt64(candVal)
			if refOK && candOK && refIsTS && candIsTS {
				if !tol.within(refTS, candTS) {
					entries = append(entries, newEntry(prefix+"."+key, refVal, candVal))
				}
				continue
			}
			// One-sided timestamps are not diagnostic: many devices simply
			// do not report them to one of the toolchains.
			continue
		}

		if !valuesEqual(refVal, candVal) {
			entries = append(entries, newEntry(prefix+"."+key, refVal, candVal))
		}
	}

	return entries
}

// KeyedCollection compares two collections keyed by identity. A key present
// on only one side produces a single entry carrying the whole record and a
// nil marker for the missing side; a key present on both recurses into
// ScalarRecord for that record's fields. Keys are visited in lexicographic
// order.
func KeyedCollection(prefix string, reference, candidate map[string]map[string]interface{}, tol Tolerance) []Entry {
	entries := make([]Entry, 0)

	keys := make([]string, 0, len(reference)+len(candidate))
	seen := make(map[string]bool, len(reference)+len(candidate))
	for k := range reference {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range candidate {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		refRec, refOK := reference[key]
		candRec, candOK := candidate[key]

		switch {
		case !candOK:
			entries = append(entries, newEntry(prefix+"."+key, refRec, nil))
		case !refOK:
			entries = append(entries, newEntry(prefix+"."+key, nil, candRec))
		default:
			entries = append(entries, ScalarRecord(prefix+"."+key, refRec, candRec, tol)...)
		}
	}

	return entries
}

// Devices diffs two canonical device records under the "device." namespace.
// Scalar attributes compare directly; storages compare as a collection keyed
// by description.
func Devices(reference, candidate canon.Device, tol Tolerance) []Entry {
	entries := ScalarRecord("device", deviceFields(reference), deviceFields(candidate), tol)
	entries = append(entries, KeyedCollection(
		"device.storages",
		storageRecords(reference.Storages),
		storageRecords(candidate.Storages),
		tol,
	)...)
	return entries
}

// Files diffs two canonical file lists as a collection keyed by resolved
// path under the "file." namespace.
func Files(reference, candidate []canon.FileEntry, tol Tolerance) []Entry {
	return KeyedCollection("file", fileRecords(reference), fileRecords(candidate), tol)
}

func deviceFields(d canon.Device) map[string]interface{} {
	return map[string]interface{}{
		"manufacturer":  d.Manufacturer,
		"model":         d.Model,
		"firmware":      d.Firmware,
		"friendly_name": d.FriendlyName,
	}
}

func storageRecords(storages []canon.Storage) map[string]map[string]interface{} {
	records := make(map[string]map[string]interface{}, len(storages))
	for _, s := range storages {
		records[s.Description] = map[string]interface{}{
			"description":    s.Description,
			"capacity_bytes": s.CapacityBytes,
		}
	}
	return records
}

func fileRecords(files []canon.FileEntry) map[string]map[string]interface{} {
	records := make(map[string]map[string]interface{}, len(files))
	for _, f := range files {
		record := map[string]interface{}{
			"path":       f.Path,
			"size_bytes": f.SizeBytes,
		}
		if f.ModTime != nil {
			record["mtime"] = *f.ModTime
		}
		records[f.Path] = record
	}
	return records
}

func unionKeys(a, b map[string]interface{}) []string {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range b {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func valuesEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
