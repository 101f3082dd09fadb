package canon

import "sort"

// NormalizeReferenceDevice maps the parsed reference detection report into a
// canonical device record. Only the first detected device is considered; an
// empty report yields the zero-value device so a failed collection still
// flows through the diff as absence. Serial number, volume identifier and
// free space never reach the canonical record.
func NormalizeReferenceDevice(report DetectReport) Device {
	if len(report.Devices) == 0 {
		return Device{Storages: []Storage{}}
	}
	raw := report.Devices[0]

	storages := make([]Storage, 0, len(raw.Storages))
	for _, s := range raw.Storages {
		storages = append(storages, Storage{
			Description:   s.Description,
			CapacityBytes: s.CapacityBytes,
		})
	}
	sortStorages(storages)

	return Device{
		Manufacturer: raw.Manufacturer,
		Model:        raw.Model,
		Firmware:     raw.Firmware,
		FriendlyName: raw.FriendlyName,
		Storages:     storages,
	}
}

// NormalizeCandidateDevice maps the candidate toolchain's probe JSON into a
// canonical device record. A top-level "device" wrapper is tolerated, and
// every field is resolved through its alias table.
func NormalizeCandidateDevice(probe map[string]interface{}) Device {
	dev := probe
	if wrapped, ok := mapValue(probe, "device"); ok {
		dev = wrapped
	}
	if dev == nil {
		return Device{Storages: []Storage{}}
	}

	storages := make([]Storage, 0)
	for _, item := range sliceValue(dev, "storages") {
		s, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		storages = append(storages, Storage{
			Description:   stringAlias(s, "description", "name"),
			CapacityBytes: uintAlias(s, "capacityBytes", "capacity_bytes"),
		})
	}
	sortStorages(storages)

	return Device{
		Manufacturer: stringAlias(dev, "manufacturer"),
		Model:        stringAlias(dev, "model", "friendlyName"),
		Firmware:     stringAlias(dev, "firmwareVersion", "firmware"),
		FriendlyName: stringAlias(dev, "friendlyName", "friendly_name"),
		Storages:     storages,
	}
}

// NormalizeReferenceFiles resolves the reference side's parent-id folder
// graph into absolute paths and returns the canonical file list sorted by
// path. Resolution is total: a file whose parent folder is unknown degrades
// to its bare name, it is never dropped.
func NormalizeReferenceFiles(files []File, folders []Folder) []FileEntry {
	paths := resolveFolderPaths(folders)

	out := make([]FileEntry, 0, len(files))
	for _, f := range files {
		entry := FileEntry{
			Path:      joinPath(paths[f.ParentID], f.Name),
			SizeBytes: f.SizeBytes,
		}
		if f.ModTime != nil {
			mtime := *f.ModTime
			entry.ModTime = &mtime
		}
		out = append(out, entry)
	}
	sortFiles(out)
	return out
}

// resolveFolderPaths builds the id to absolute-path mapping. Folders are
// visited in id order; MTP object ids are allocated parents-first, so a
// parent's path is normally present when its children are resolved. A folder
// whose parent is unknown contributes only its own name.
func resolveFolderPaths(folders []Folder) map[uint32]string {
	sorted := make([]Folder, len(folders))
	copy(sorted, folders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	paths := map[uint32]string{0: ""}
	for _, f := range sorted {
		paths[f.ID] = joinPath(paths[f.ParentID], f.Name)
	}
	return paths
}

// NormalizeCandidateFiles flattens the candidate toolchain's (possibly
// nested) listing into the canonical file list sorted by path. The listing
// is either a bare JSON array or an object with an "items" array; anything
// else yields an empty list.
func NormalizeCandidateFiles(listing interface{}) []FileEntry {
	var items []interface{}
	switch v := listing.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		items = sliceValue(v, "items")
	}

	out := make([]FileEntry, 0)
	flattenTree(items, "", &out)
	sortFiles(out)
	return out
}

func flattenTree(items []interface{}, prefix string, out *[]FileEntry) {
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		path := joinPath(prefix, stringAlias(item, "name"))
		if stringAlias(item, "type") == "folder" {
			flattenTree(sliceValue(item, "children"), path, out)
			continue
		}
		entry := FileEntry{
			Path:      path,
			SizeBytes: uintAlias(item, "sizeBytes", "size_bytes"),
		}
		if mtime, ok := candidateModTime(item); ok {
			entry.ModTime = &mtime
		}
		*out = append(*out, entry)
	}
}

func candidateModTime(item map[string]interface{}) (int64, bool) {
	for _, key := range []string{"modificationDate", "mtime"} {
		v, ok := item[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n), true
		case int64:
			return n, true
		case string:
			if ts, ok := ParseTimestamp(n); ok {
				return ts, true
			}
		}
	}
	return 0, false
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func sortStorages(storages []Storage) {
	sort.Slice(storages, func(i, j int) bool {
		return storages[i].Description < storages[j].Description
	})
}

func sortFiles(files []FileEntry) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
}
