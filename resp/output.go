package resp

import "fmt"

// Output is a per-command decode target. The handler calls Feed exactly
// once with the flattened event list for the command's single top-level
// reply — every command reply is exactly one RESP value, so one Feed
// call is always enough. Feed converting the events into a value may
// itself fail — that is a decode error and does not affect whether the
// bytes were consumed; Decoder.Next already guarantees the full reply's
// byte extent was consumed before Feed is ever called.
type Output interface {
	// Feed converts the given reply events into this Output's value. It
	// is called at most once between Resets.
	Feed(events []Reply) error
	// Complete reports whether Feed has been called since construction
	// or the last Reset.
	Complete() bool
	// Value returns the decoded value. Valid only once Complete is true.
	Value() interface{}
	// Err returns the decode error from Feed, if any.
	Err() error
	// Reset clears decoded state so the Output can be reused after a
	// command is re-encoded and rewritten following a reconnect.
	Reset()
}

// GenericOutput decodes a reply into the same dynamic typing redigo's
// callers rely on: int64, string (simple status), []byte (bulk),
// []interface{} (array, nil-able), or nil for a null bulk/array; a server
// error reply yields a nil value and an Error from Feed and Err. Pub/sub
// push frames are not classified with it: the command handler decodes
// them with PushOutput.
type GenericOutput struct {
	done  bool
	value interface{}
	err   error
}

func (o *GenericOutput) Feed(events []Reply) error {
	if len(events) == 0 {
		o.err = newProtocolError("empty reply")
		o.done = true
		return o.err
	}
	v, _, err := buildValue(events, 0)
	o.value, o.err, o.done = v, err, true
	return err
}

func (o *GenericOutput) Complete() bool      { return o.done }
func (o *GenericOutput) Value() interface{}  { return o.value }
func (o *GenericOutput) Err() error          { return o.err }
func (o *GenericOutput) Reset() {
	o.done, o.value, o.err = false, nil, nil
}

// buildValue converts the event at events[i] (and, if it is an array,
// the Len events that follow) into a Go value, returning the index of
// the first event after the one it consumed.
func buildValue(events []Reply, i int) (interface{}, int, error) {
	if i >= len(events) {
		return nil, i, newProtocolError("truncated reply")
	}
	ev := events[i]
	switch ev.Kind {
	case SimpleString:
		return ev.Str, i + 1, nil
	case ReplyError:
		return nil, i + 1, Error(ev.Str)
	case Integer:
		return ev.Int, i + 1, nil
	case BulkString:
		if ev.Null {
			return nil, i + 1, nil
		}
		return ev.Bulk, i + 1, nil
	case Array:
		if ev.Null {
			return nil, i + 1, nil
		}
		arr := make([]interface{}, ev.Len)
		j := i + 1
		for k := 0; k < ev.Len; k++ {
			v, next, err := buildValue(events, j)
			if err != nil {
				return nil, next, err
			}
			arr[k] = v
			j = next
		}
		return arr, j, nil
	default:
		return nil, i + 1, newProtocolError("unknown reply kind %d", ev.Kind)
	}
}

// StatusOutput decodes a reply expected to be a simple status string
// ("+OK\r\n"). A server error reply yields an Error; any other reply,
// including a well-formed but differently shaped one, fails with a
// decode error.
type StatusOutput struct {
	done   bool
	status string
	err    error
}

func (o *StatusOutput) Feed(events []Reply) error {
	o.done = true
	if len(events) != 1 {
		o.err = newProtocolError("status reply must be a single value")
		return o.err
	}
	switch events[0].Kind {
	case SimpleString:
		o.status = events[0].Str
	case ReplyError:
		o.err = Error(events[0].Str)
	default:
		o.err = fmt.Errorf("resp: unexpected reply kind %d for status output", events[0].Kind)
	}
	return o.err
}

func (o *StatusOutput) Complete() bool     { return o.done }
func (o *StatusOutput) Value() interface{} { return o.status }
func (o *StatusOutput) Err() error         { return o.err }
func (o *StatusOutput) Reset()             { o.done, o.status, o.err = false, "", nil }

// IntegerOutput decodes a reply expected to be a RESP integer.
type IntegerOutput struct {
	done  bool
	value int64
	err   error
}

func (o *IntegerOutput) Feed(events []Reply) error {
	o.done = true
	if len(events) != 1 {
		o.err = newProtocolError("integer reply must be a single value")
		return o.err
	}
	switch events[0].Kind {
	case Integer:
		o.value = events[0].Int
	case ReplyError:
		o.err = Error(events[0].Str)
	default:
		o.err = fmt.Errorf("resp: unexpected reply kind %d for integer output", events[0].Kind)
	}
	return o.err
}

func (o *IntegerOutput) Complete() bool     { return o.done }
func (o *IntegerOutput) Value() interface{} { return o.value }
func (o *IntegerOutput) Err() error         { return o.err }
func (o *IntegerOutput) Reset()             { o.done, o.value, o.err = false, 0, nil }

// BulkOutput decodes a reply expected to be a bulk string, null bulk
// included.
type BulkOutput struct {
	done  bool
	value []byte
	null  bool
	err   error
}

func (o *BulkOutput) Feed(events []Reply) error {
	o.done = true
	if len(events) != 1 {
		o.err = newProtocolError("bulk reply must be a single value")
		return o.err
	}
	switch events[0].Kind {
	case BulkString:
		o.null = events[0].Null
		o.value = events[0].Bulk
	case ReplyError:
		o.err = Error(events[0].Str)
	default:
		o.err = fmt.Errorf("resp: unexpected reply kind %d for bulk output", events[0].Kind)
	}
	return o.err
}

func (o *BulkOutput) Complete() bool { return o.done }

// Value returns the payload, or nil for a null bulk.
func (o *BulkOutput) Value() interface{} {
	if o.null {
		return nil
	}
	return o.value
}
func (o *BulkOutput) Err() error { return o.err }
func (o *BulkOutput) Reset()     { o.done, o.value, o.null, o.err = false, nil, false, nil }

// Bytes returns the decoded payload and whether it was present; a null
// bulk reports ok=false.
func (o *BulkOutput) Bytes() (value []byte, ok bool) { return o.value, !o.null }

// String is Bytes with the payload converted to a string.
func (o *BulkOutput) String() (value string, ok bool) {
	if o.null {
		return "", false
	}
	return string(o.value), true
}

// ArrayOutput decodes a reply expected to be an array, null array
// included. Elements decode with the same dynamic typing as
// GenericOutput.
type ArrayOutput struct {
	done  bool
	value []interface{}
	null  bool
	err   error
}

func (o *ArrayOutput) Feed(events []Reply) error {
	o.done = true
	if len(events) == 0 {
		o.err = newProtocolError("empty reply")
		return o.err
	}
	switch events[0].Kind {
	case ReplyError:
		o.err = Error(events[0].Str)
		return o.err
	case Array:
	default:
		o.err = fmt.Errorf("resp: unexpected reply kind %d for array output", events[0].Kind)
		return o.err
	}
	if events[0].Null {
		o.null = true
		return nil
	}
	v, _, err := buildValue(events, 0)
	if err != nil {
		o.err = err
		return err
	}
	o.value = v.([]interface{})
	return nil
}

func (o *ArrayOutput) Complete() bool { return o.done }

// Value returns the decoded elements, or nil for a null array.
func (o *ArrayOutput) Value() interface{} {
	if o.null {
		return nil
	}
	return o.value
}
func (o *ArrayOutput) Err() error { return o.err }
func (o *ArrayOutput) Reset()     { o.done, o.value, o.null, o.err = false, nil, false, nil }

// Elements returns the decoded array and whether it was present; a null
// array reports ok=false.
func (o *ArrayOutput) Elements() (value []interface{}, ok bool) { return o.value, !o.null }

// Push is a decoded pub/sub-shaped reply: a non-null array whose first
// element is a verb string, followed by descriptive fields and, for a
// message push, a trailing bulk payload.
type Push struct {
	Verb   string
	Fields []string
	Data   []byte
}

// PushOutput decodes a reply shaped like a pub/sub push frame. It makes
// no judgment about which verbs are meaningful — that classification is
// the caller's job (state.ClassifyPush in the client package) — it only
// separates the verb, the descriptive fields, and a trailing bulk
// payload, mirroring the wire shape Redis actually sends: MESSAGE and
// PMESSAGE end in a bulk payload, every other push verb ends in an
// integer subscription count.
type PushOutput struct {
	done bool
	push Push
	err  error
}

func (o *PushOutput) Feed(events []Reply) error {
	o.done = true
	if len(events) < 2 || events[0].Kind != Array || events[0].Null {
		o.err = newProtocolError("push reply must be a non-null array")
		return o.err
	}
	verb, ok := replyText(events[1])
	if !ok {
		o.err = newProtocolError("push reply verb must be a string")
		return o.err
	}
	o.push = Push{Verb: verb}
	for i := 2; i < len(events); i++ {
		if i == len(events)-1 && events[i].Kind == BulkString && !events[i].Null {
			o.push.Data = events[i].Bulk
			continue
		}
		if s, ok := replyText(events[i]); ok {
			o.push.Fields = append(o.push.Fields, s)
		}
	}
	return nil
}

func (o *PushOutput) Complete() bool     { return o.done }
func (o *PushOutput) Value() interface{} { return o.push }
func (o *PushOutput) Err() error         { return o.err }
func (o *PushOutput) Reset()             { o.done, o.push, o.err = false, Push{}, nil }

// replyText extracts a reply's value as a string when it is one of the
// two RESP kinds that carry text (a simple status or a non-null bulk
// string); anything else is not text.
func replyText(r Reply) (string, bool) {
	switch r.Kind {
	case BulkString:
		if r.Null {
			return "", false
		}
		return string(r.Bulk), true
	case SimpleString:
		return r.Str, true
	default:
		return "", false
	}
}
