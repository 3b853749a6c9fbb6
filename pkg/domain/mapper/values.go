package mapper

import "time"

// A present key of the wrong type reads the same as an absent key, so
// malformed optional values degrade to defaults instead of failing.
// Required keys are enforced by the callers, not here.

func stringValue(raw map[string]any, key string) (string, bool) {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

func stringOrDefault(raw map[string]any, key, fallback string) string {
	if s, ok := stringValue(raw, key); ok {
		return s
	}
	return fallback
}

func boolOrDefault(raw map[string]any, key string, fallback bool) bool {
	if v, ok := raw[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// intValue accepts the numeric representations produced by JSON
// decoding (float64) and by document stores (int, int64).
func intValue(raw map[string]any, key string) (int, bool) {
	switch v := raw[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func int64Value(raw map[string]any, key string) (int64, bool) {
	switch v := raw[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// timeOrNow reads an epoch-milliseconds timestamp, defaulting to the
// current time when the key is absent or malformed. Decoded times are
// normalized to UTC.
func timeOrNow(raw map[string]any, key string) time.Time {
	if ms, ok := int64Value(raw, key); ok {
		return time.UnixMilli(ms).UTC()
	}
	return time.Now().UTC()
}

func mapSlice(raw map[string]any, key string) []map[string]any {
	items, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	var maps []map[string]any
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			maps = append(maps, m)
		}
	}
	return maps
}
