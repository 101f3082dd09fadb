package canon

import "strconv"

// The candidate toolchain emits JSON whose key names drifted across releases
// (firmwareVersion vs firmware, capacityBytes vs capacity_bytes). Alias
// lookups try each known key in a fixed priority order and fall back to the
// zero value, so a missing optional field never fails normalization.

func stringAlias(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func uintAlias(m map[string]interface{}, keys ...string) uint64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n < 0 {
				return 0
			}
			return uint64(n)
		case int:
			if n < 0 {
				return 0
			}
			return uint64(n)
		case int64:
			if n < 0 {
				return 0
			}
			return uint64(n)
		case uint64:
			return n
		case string:
			if parsed, err := strconv.ParseUint(n, 10, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}

func mapValue(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	nested, ok := v.(map[string]interface{})
	return nested, ok
}

func sliceValue(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key]; ok {
		if s, ok := v.([]interface{}); ok {
			return s
		}
	}
	return nil
}
