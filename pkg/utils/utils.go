package utils

import "encoding/json"

// Ptr returns a pointer to v. Convenient for optional filter fields.
func Ptr[T any](v T) *T {
	return &v
}

// JSONSnapshot serializes v for observability records. Returns an empty
// string when v cannot be marshalled; logging must never fail an operation.
func JSONSnapshot(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
