package resp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		args     []interface{}
		expected string
	}{
		{"SET", []interface{}{"foo", "bar"}, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"},
		{"SET", []interface{}{"foo", 100}, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\n100\r\n"},
		{"SET", []interface{}{"", []byte("foo")}, "*3\r\n$3\r\nSET\r\n$0\r\n\r\n$3\r\nfoo\r\n"},
		{"GET", []interface{}{"foo"}, "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"},
		{"PING", nil, "*1\r\n$4\r\nPING\r\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		err := Encode(&buf, nil, tt.name, tt.args...)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, buf.String())
	}
}

func TestEncodeBytes(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeBytes(&buf, "SET", []byte("foo"), []byte("bar"))
	require.NoError(t, err)
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n", buf.String())
}
