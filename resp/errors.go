package resp

import "fmt"

// ProtocolError is raised when the server sends bytes that are not a
// well-formed RESP reply at the position the decoder expected one.
type ProtocolError struct {
	message string
}

func (e *ProtocolError) Error() string { return "resp: " + e.message }

func newProtocolError(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{message: fmt.Sprintf(format, args...)}
}

// nilError reports a null bulk string or null array where a caller
// wanted a usable value.
type nilError struct{}

func (nilError) Error() string { return "resp: nil reply" }

// ErrNil is a sentinel a caller can compare against after checking a
// BulkOutput or ArrayOutput's ok return for a null reply.
var ErrNil error = nilError{}
