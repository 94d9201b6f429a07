package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional is a JSON PATCH field (RFC 7396) that tells "absent" apart from
// "null":
//   - Present=false: field absent (leave unchanged)
//   - Present=true, Value=nil: explicit null
//   - Present=true, Value!=nil: a value
type Optional[T any] struct {
	Present bool
	Value   *T
}

// UnmarshalJSON only runs for keys present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// IsNull reports an explicit null.
func (o Optional[T]) IsNull() bool {
	return o.Present && o.Value == nil
}
