// Package jsonutil provides helper functions for extracting typed values
// from unstructured JSON maps (map[string]any) decoded from telemetry frames.
package jsonutil

import (
	"encoding/json"
	"strconv"
)

// StringFromAny converts a JSON scalar to string. Numbers are formatted in
// base 10 so hosts that send numeric fields still decode; other types yield "".
func StringFromAny(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}

// StringFromMap extracts a string from a map by key.
func StringFromMap(data map[string]any, key string) string {
	if v, ok := data[key]; ok {
		return StringFromAny(v)
	}
	return ""
}

// BoolFromMap extracts a bool from a map by key. The strings "true" and "1"
// and non-zero numbers also count as true.
func BoolFromMap(data map[string]any, key string) bool {
	v, ok := data[key]
	if !ok {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		b, err := strconv.ParseBool(val)
		return err == nil && b
	default:
		return false
	}
}

// MapFromMap extracts a nested object from a map by key. The boolean is
// false when the key is missing, null, or not an object.
func MapFromMap(data map[string]any, key string) (map[string]any, bool) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// FirstString returns the first non-empty string found under keys.
func FirstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := StringFromMap(data, key); s != "" {
			return s
		}
	}
	return ""
}
