package repository

import (
	json "github.com/goccy/go-json"
)

// Slice and struct columns are stored as JSON text; the helpers below keep
// the scan code short. Marshal failures on these types cannot happen with
// valid inputs, so they degrade to empty values instead of erroring.

func marshalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func unmarshalFloats(raw string) []float64 {
	if raw == "" {
		return nil
	}
	var out []float64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
