// Package canon defines the canonical record model both MTP toolchains are
// normalized into before diffing. Canonical records are de-aliased and
// exclusion-filtered: fields one side privacy-redacts (serial number) or that
// are too volatile to compare (free space) are dropped here, not merely
// skipped later, so the diff engine can never surface them.
package canon

// Device is the canonical device descriptor.
type Device struct {
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	Firmware     string    `json:"firmware"`
	FriendlyName string    `json:"friendly_name"`
	Storages     []Storage `json:"storages"`
}

// Storage is the canonical storage descriptor. Free space is excluded by
// design: it changes between the two collection passes.
type Storage struct {
	Description   string `json:"description"`
	CapacityBytes uint64 `json:"capacity_bytes"`
}

// FileEntry is the canonical file descriptor. Path is the fully resolved
// slash-joined path from the storage root. ModTime is Unix seconds UTC and
// nil when the toolchain did not report one.
type FileEntry struct {
	Path      string `json:"path"`
	SizeBytes uint64 `json:"size_bytes"`
	ModTime   *int64 `json:"mtime,omitempty"`
}

// DetectReport is the structured output of the reference toolchain's device
// detection (parsed mtp-detect text), in that toolchain's own naming.
type DetectReport struct {
	Devices []RawDevice `json:"devices"`
	Error   string      `json:"error,omitempty"`
}

// RawDevice is one device block from the reference detection output.
type RawDevice struct {
	Index        int          `json:"index"`
	VID          string       `json:"vid"`
	PID          string       `json:"pid"`
	Manufacturer string       `json:"manufacturer,omitempty"`
	Model        string       `json:"model,omitempty"`
	Serial       string       `json:"serial,omitempty"`
	Firmware     string       `json:"firmware,omitempty"`
	FriendlyName string       `json:"friendly_name,omitempty"`
	Storages     []RawStorage `json:"storages"`
}

// RawStorage is one storage block from the reference detection output.
// Volume and FreeBytes are carried for the raw evidence payload but never
// reach the canonical model.
type RawStorage struct {
	ID            int    `json:"id"`
	Description   string `json:"description,omitempty"`
	Volume        string `json:"volume,omitempty"`
	CapacityBytes uint64 `json:"capacity_bytes,omitempty"`
	FreeBytes     uint64 `json:"free_bytes,omitempty"`
}

// Folder is one folder record from the reference listing: a parent-id graph
// node, resolved to a path during normalization.
type Folder struct {
	ID       uint32 `json:"id"`
	ParentID uint32 `json:"parent_id"`
	Name     string `json:"name"`
}

// File is one file record from the reference listing.
type File struct {
	ID        uint32 `json:"id"`
	ParentID  uint32 `json:"parent_id"`
	Name      string `json:"name,omitempty"`
	SizeBytes uint64 `json:"size_bytes,omitempty"`
	ModTime   *int64 `json:"mtime,omitempty"`
}
