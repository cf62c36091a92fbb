package resp

import (
	"bytes"
	"fmt"
)

// Codec converts an argument value supplied by a command-building
// collaborator into the bytes Encode writes onto the wire. It is a
// pluggable "bytes ↔ user type" seam; argument construction itself
// (choosing what values a given Redis command takes) is out of scope,
// but the conversion point is part of the codec.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
}

// UTF8Codec is the default Codec. It passes strings and []byte through
// unchanged and formats everything else with fmt.
type UTF8Codec struct{}

func (UTF8Codec) Encode(v interface{}) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		var buf bytes.Buffer
		fmt.Fprint(&buf, v)
		return buf.Bytes(), nil
	}
}
