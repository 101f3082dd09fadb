package collect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/effortless-metrics/mtpcompat/internal/canon"
)

// Best-effort parsers for the libmtp CLI tools' text output. The formats
// drift across libmtp versions, so every pattern is tolerant: unmatched
// lines are skipped, never fatal.

var (
	deviceHeaderRe = regexp.MustCompile(`^Device\s+(\d+)\s+\(VID=([0-9a-fA-F]+)\s+and\s+PID=([0-9a-fA-F]+)\)`)

	deviceAttrRes = []struct {
		set func(*canon.RawDevice, string)
		re  *regexp.Regexp
	}{
		{func(d *canon.RawDevice, v string) { d.Manufacturer = v }, regexp.MustCompile(`^\s+Manufacturer:\s+(.+)`)},
		{func(d *canon.RawDevice, v string) { d.Model = v }, regexp.MustCompile(`^\s+Model:\s+(.+)`)},
		{func(d *canon.RawDevice, v string) { d.Serial = v }, regexp.MustCompile(`^\s+Serial number:\s+(.+)`)},
		{func(d *canon.RawDevice, v string) { d.Firmware = v }, regexp.MustCompile(`^\s+Device version:\s+(.+)`)},
		{func(d *canon.RawDevice, v string) { d.FriendlyName = v }, regexp.MustCompile(`^\s+Friendly name:\s+(.+)`)},
	}

	storageHeaderRe   = regexp.MustCompile(`^\s+Storage\s+(\d+)\s*:`)
	storageDescRe     = regexp.MustCompile(`^\s+StorageDescription:\s+(.+)`)
	storageVolumeRe   = regexp.MustCompile(`^\s+VolumeIdentifier:\s+(.+)`)
	storageCapacityRe = regexp.MustCompile(`^\s+MaxCapacity:\s+(\d+)`)
	storageFreeRe     = regexp.MustCompile(`^\s+FreeSpaceInBytes:\s+(\d+)`)

	folderRe = regexp.MustCompile(`(?i)^\s*Folder[:\s]+(\d+)\s+\(parent:\s*(\d+)\)[,\s]+Name:\s+(.+)`)

	fileHeaderRe = regexp.MustCompile(`(?i)^\s*File[:\s]+(\d+)\s+\(parent:\s*(\d+)`)
	fileNameRe   = regexp.MustCompile(`(?i)^\s*Filename:\s+(.+)`)
	fileSizeRe   = regexp.MustCompile(`(?i)^\s*File size\s+(\d+)`)
	fileMtimeRe  = regexp.MustCompile(`(?i)^\s*Modified date:\s+(.+)`)
)

// ParseDetect parses mtp-detect output into a detection report. When target
// (vid:pid) is non-empty, devices not matching it are filtered out.
func ParseDetect(raw, target string) canon.DetectReport {
	report := canon.DetectReport{Devices: []canon.RawDevice{}}
	var cur *canon.RawDevice

	for _, line := range strings.Split(raw, "\n") {
		if m := deviceHeaderRe.FindStringSubmatch(line); m != nil {
			index, _ := strconv.Atoi(m[1])
			report.Devices = append(report.Devices, canon.RawDevice{
				Index:    index,
				VID:      strings.ToLower(m[2]),
				PID:      strings.ToLower(m[3]),
				Storages: []canon.RawStorage{},
			})
			cur = &report.Devices[len(report.Devices)-1]
			continue
		}
		if cur == nil {
			continue
		}

		if matchDeviceAttr(cur, line) {
			continue
		}

		if m := storageHeaderRe.FindStringSubmatch(line); m != nil {
			id, _ := strconv.Atoi(m[1])
			cur.Storages = append(cur.Storages, canon.RawStorage{ID: id})
			continue
		}
		if len(cur.Storages) == 0 {
			continue
		}
		storage := &cur.Storages[len(cur.Storages)-1]
		switch {
		case storageDescRe.MatchString(line):
			storage.Description = strings.TrimSpace(storageDescRe.FindStringSubmatch(line)[1])
		case storageVolumeRe.MatchString(line):
			storage.Volume = strings.TrimSpace(storageVolumeRe.FindStringSubmatch(line)[1])
		case storageCapacityRe.MatchString(line):
			storage.CapacityBytes, _ = strconv.ParseUint(storageCapacityRe.FindStringSubmatch(line)[1], 10, 64)
		case storageFreeRe.MatchString(line):
			storage.FreeBytes, _ = strconv.ParseUint(storageFreeRe.FindStringSubmatch(line)[1], 10, 64)
		}
	}

	if target != "" {
		report.Devices = filterDevices(report.Devices, target)
	}
	return report
}

func matchDeviceAttr(dev *canon.RawDevice, line string) bool {
	for _, attr := range deviceAttrRes {
		if m := attr.re.FindStringSubmatch(line); m != nil {
			attr.set(dev, strings.TrimSpace(m[1]))
			return true
		}
	}
	return false
}

func filterDevices(devices []canon.RawDevice, target string) []canon.RawDevice {
	parts := strings.SplitN(strings.ToLower(target), ":", 2)
	if len(parts) != 2 {
		return devices
	}
	filtered := make([]canon.RawDevice, 0, len(devices))
	for _, d := range devices {
		if d.VID == parts[0] && d.PID == parts[1] {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// ParseFolders parses mtp-folders output into folder records.
func ParseFolders(raw string) []canon.Folder {
	folders := make([]canon.Folder, 0)
	for _, line := range strings.Split(raw, "\n") {
		m := folderRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, _ := strconv.ParseUint(m[1], 10, 32)
		parent, _ := strconv.ParseUint(m[2], 10, 32)
		folders = append(folders, canon.Folder{
			ID:       uint32(id),
			ParentID: uint32(parent),
			Name:     strings.TrimSpace(m[3]),
		})
	}
	return folders
}

// ParseFiles parses mtp-files output into file records.
func ParseFiles(raw string) []canon.File {
	files := make([]canon.File, 0)
	var cur *canon.File

	for _, line := range strings.Split(raw, "\n") {
		if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
			id, _ := strconv.ParseUint(m[1], 10, 32)
			parent, _ := strconv.ParseUint(m[2], 10, 32)
			files = append(files, canon.File{ID: uint32(id), ParentID: uint32(parent)})
			cur = &files[len(files)-1]
			continue
		}
		if cur == nil {
			continue
		}

		switch {
		case fileNameRe.MatchString(line):
			cur.Name = strings.TrimSpace(fileNameRe.FindStringSubmatch(line)[1])
		case fileSizeRe.MatchString(line):
			cur.SizeBytes, _ = strconv.ParseUint(fileSizeRe.FindStringSubmatch(line)[1], 10, 64)
		case fileMtimeRe.MatchString(line):
			if ts, ok := canon.ParseTimestamp(strings.TrimSpace(fileMtimeRe.FindStringSubmatch(line)[1])); ok {
				cur.ModTime = &ts
			}
		}
	}
	return files
}
