package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeScalarReplies(t *testing.T) {
	var d Decoder
	d.Feed([]byte("+OK\r\n:42\r\n$3\r\nfoo\r\n$-1\r\n-ERR bad\r\n"))

	events, err := d.Next()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, Reply{Kind: SimpleString, Str: "OK"}, events[0])

	events, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, Reply{Kind: Integer, Int: 42}, events[0])

	events, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, Reply{Kind: BulkString, Bulk: []byte("foo")}, events[0])

	events, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, Reply{Kind: BulkString, Null: true}, events[0])

	events, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, Reply{Kind: ReplyError, Str: "ERR bad"}, events[0])

	events, err = d.Next()
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestDecodeArray(t *testing.T) {
	var d Decoder
	d.Feed([]byte("*3\r\n$3\r\nfoo\r\n:1\r\n*-1\r\n"))

	events, err := d.Next()
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, Reply{Kind: Array, Len: 3}, events[0])
	assert.Equal(t, Reply{Kind: BulkString, Bulk: []byte("foo")}, events[1])
	assert.Equal(t, Reply{Kind: Integer, Int: 1}, events[2])
	assert.Equal(t, Reply{Kind: Array, Null: true}, events[3])
}

func TestDecodeResumesAcrossFragments(t *testing.T) {
	var d Decoder

	// Feed the array header and first element only.
	d.Feed([]byte("*2\r\n$3\r\nfoo\r\n"))
	events, err := d.Next()
	require.NoError(t, err)
	assert.Nil(t, events, "incomplete array must not be reported yet")

	// The second element arrives split across two fragments, one of
	// which lands in the middle of the bulk string body.
	d.Feed([]byte("$3\r\nba"))
	events, err = d.Next()
	require.NoError(t, err)
	assert.Nil(t, events)

	d.Feed([]byte("r\r\n"))
	events, err = d.Next()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, Reply{Kind: Array, Len: 2}, events[0])
	assert.Equal(t, Reply{Kind: BulkString, Bulk: []byte("foo")}, events[1])
	assert.Equal(t, Reply{Kind: BulkString, Bulk: []byte("bar")}, events[2])
}

func TestDecodeMultipleRepliesInOneFeed(t *testing.T) {
	var d Decoder
	d.Feed([]byte("+OK\r\n+ALSO\r\n"))

	events, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "OK", events[0].Str)

	events, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, "ALSO", events[0].Str)

	events, err = d.Next()
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestDecodeBadLineTerminator(t *testing.T) {
	var d Decoder
	d.Feed([]byte("+OK\n"))
	_, err := d.Next()
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestDecodeBadBulkLength(t *testing.T) {
	var d Decoder
	d.Feed([]byte("$x\r\n"))
	_, err := d.Next()
	require.Error(t, err)
}
