package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, wire string) []Reply {
	var d Decoder
	d.Feed([]byte(wire))
	events, err := d.Next()
	require.NoError(t, err)
	require.NotNil(t, events)
	return events
}

func TestGenericOutputScalars(t *testing.T) {
	var o GenericOutput

	require.NoError(t, o.Feed(decodeOne(t, "+OK\r\n")))
	assert.True(t, o.Complete())
	assert.Equal(t, "OK", o.Value())
	assert.NoError(t, o.Err())

	o.Reset()
	assert.False(t, o.Complete())

	require.NoError(t, o.Feed(decodeOne(t, ":7\r\n")))
	assert.Equal(t, int64(7), o.Value())

	o.Reset()
	require.NoError(t, o.Feed(decodeOne(t, "$-1\r\n")))
	assert.Nil(t, o.Value())
}

func TestGenericOutputArray(t *testing.T) {
	var o GenericOutput
	require.NoError(t, o.Feed(decodeOne(t, "*2\r\n$3\r\nfoo\r\n:1\r\n")))

	arr, ok := o.Value().([]interface{})
	require.True(t, ok)
	require.Len(t, arr, 2)
	assert.Equal(t, []byte("foo"), arr[0])
	assert.Equal(t, int64(1), arr[1])
}

func TestBulkOutputNullReportsNotOK(t *testing.T) {
	var o BulkOutput
	require.NoError(t, o.Feed(decodeOne(t, "$-1\r\n")))
	assert.True(t, o.Complete())
	_, ok := o.Bytes()
	assert.False(t, ok)
	assert.Nil(t, o.Value())
}

func TestBulkOutputValue(t *testing.T) {
	var o BulkOutput
	require.NoError(t, o.Feed(decodeOne(t, "$5\r\nhello\r\n")))
	s, ok := o.String()
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestArrayOutputNullReportsNotOK(t *testing.T) {
	var o ArrayOutput
	require.NoError(t, o.Feed(decodeOne(t, "*-1\r\n")))
	assert.True(t, o.Complete())
	_, ok := o.Elements()
	assert.False(t, ok)
}

func TestArrayOutputPropagatesServerError(t *testing.T) {
	var o ArrayOutput
	err := o.Feed(decodeOne(t, "-ERR boom\r\n"))
	require.Error(t, err)
	assert.Equal(t, Error("ERR boom"), err)
}

func TestPushOutputSplitsVerbFieldsAndPayload(t *testing.T) {
	var o PushOutput
	require.NoError(t, o.Feed(decodeOne(t, "*3\r\n$7\r\nmessage\r\n$4\r\nnews\r\n$5\r\nhello\r\n")))
	push := o.Value().(Push)
	assert.Equal(t, "message", push.Verb)
	assert.Equal(t, []string{"news"}, push.Fields)
	assert.Equal(t, []byte("hello"), push.Data)
}

func TestPushOutputSubscribeAckHasNoPayload(t *testing.T) {
	var o PushOutput
	require.NoError(t, o.Feed(decodeOne(t, "*3\r\n$9\r\nsubscribe\r\n$4\r\nnews\r\n:1\r\n")))
	push := o.Value().(Push)
	assert.Equal(t, "subscribe", push.Verb)
	assert.Equal(t, []string{"news"}, push.Fields)
	assert.Nil(t, push.Data)
}

func TestGenericOutputServerError(t *testing.T) {
	var o GenericOutput
	err := o.Feed(decodeOne(t, "-ERR boom\r\n"))
	require.Error(t, err)
	assert.Equal(t, Error("ERR boom"), err)
	assert.Equal(t, err, o.Err())
}

func TestStatusOutputRejectsWrongShape(t *testing.T) {
	var o StatusOutput
	err := o.Feed(decodeOne(t, ":1\r\n"))
	require.Error(t, err)
}

func TestIntegerOutputPropagatesServerError(t *testing.T) {
	var o IntegerOutput
	err := o.Feed(decodeOne(t, "-ERR not an int\r\n"))
	require.Error(t, err)
	assert.Equal(t, Error("ERR not an int"), err)
}

func TestOutputResetAllowsReuseAfterRetry(t *testing.T) {
	var o GenericOutput
	require.NoError(t, o.Feed(decodeOne(t, "+FIRST\r\n")))
	o.Reset()
	require.NoError(t, o.Feed(decodeOne(t, "+SECOND\r\n")))
	assert.Equal(t, "SECOND", o.Value())
}
