// Package jsonutil provides the JSON helpers shared by the transcript
// store and profanity-tool.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PrettyJSON formats a JSON string with indentation for display.
// Returns the original string if it's not valid JSON.
func PrettyJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

// MustMarshal marshals a value to JSON, panicking on error.
// Use only for values known to be marshalable (e.g., maps, slices).
func MustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("jsonutil.MustMarshal: %v", err))
	}
	return string(b)
}

// Decode unmarshals s into a new T. An empty string yields the zero
// value.
func Decode[T any](s string) (T, error) {
	var v T
	if s == "" {
		return v, nil
	}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, fmt.Errorf("decoding JSON: %w", err)
	}
	return v, nil
}

// TruncateString truncates a string to maxLen characters, adding "..."
// if truncation occurred.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
