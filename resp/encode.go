package resp

import (
	"io"
	"strconv"
)

// Encode writes name and args as a RESP multi-bulk request: a "*<n>\r\n"
// header followed by one "$<len>\r\n<bytes>\r\n" bulk string per element.
// Inline requests are never emitted. Each element of args is converted
// to bytes with codec; pass nil to use UTF8Codec.
func Encode(w io.Writer, codec Codec, name string, args ...interface{}) error {
	if codec == nil {
		codec = UTF8Codec{}
	}
	if err := writeMultiBulkHeader(w, 1+len(args)); err != nil {
		return err
	}
	if err := writeBulk(w, []byte(name)); err != nil {
		return err
	}
	for _, arg := range args {
		b, err := codec.Encode(arg)
		if err != nil {
			return err
		}
		if err := writeBulk(w, b); err != nil {
			return err
		}
	}
	return nil
}

// EncodeBytes is Encode specialized for callers that have already
// converted every argument to bytes (the common case once a facade layer
// has built a Command).
func EncodeBytes(w io.Writer, name string, args ...[]byte) error {
	if err := writeMultiBulkHeader(w, 1+len(args)); err != nil {
		return err
	}
	if err := writeBulk(w, []byte(name)); err != nil {
		return err
	}
	for _, arg := range args {
		if err := writeBulk(w, arg); err != nil {
			return err
		}
	}
	return nil
}

func writeMultiBulkHeader(w io.Writer, n int) error {
	return writeLenPrefixed(w, '*', n)
}

func writeBulk(w io.Writer, b []byte) error {
	if err := writeLenPrefixed(w, '$', len(b)); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := w.Write(crlf)
	return err
}

var crlf = []byte("\r\n")

func writeLenPrefixed(w io.Writer, prefix byte, n int) error {
	buf := make([]byte, 0, 16)
	buf = append(buf, prefix)
	buf = strconv.AppendInt(buf, int64(n), 10)
	buf = append(buf, '\r', '\n')
	_, err := w.Write(buf)
	return err
}
