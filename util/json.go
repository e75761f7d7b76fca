package util

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON encodes the value the way it's sent over the wire: no HTML escaping and no trailing newline
//
// All size calculations must go through this function to stay consistent with the actual request bodies
func MarshalJSON(value interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
