package applog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircularBufferWrapsAndWritesTo(t *testing.T) {
	buf := newBuffer(2)

	n, err := buf.Write([]byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = buf.Write([]byte("world"))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = buf.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.String())
}

func TestInitDefaultsToInfoLevel(t *testing.T) {
	Init("json", "not-a-level", "stdout")
	assert.Equal(t, "info", Logger.GetLevel().String())
}
