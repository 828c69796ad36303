package genericconf

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

func TestToSlogLevel(t *testing.T) {
	level, err := ToSlogLevel("DEBUG")
	require.NoError(t, err)
	require.Equal(t, log.LevelDebug, level)

	level, err = ToSlogLevel("info")
	require.NoError(t, err)
	require.Equal(t, log.LevelInfo, level)

	// Legacy numeric verbosities still parse.
	level, err = ToSlogLevel("3")
	require.NoError(t, err)
	require.Equal(t, log.LevelInfo, level)

	_, err = ToSlogLevel("loud")
	require.Error(t, err)
}

func TestHandlerFromLogType(t *testing.T) {
	var buf bytes.Buffer
	handler, err := HandlerFromLogType("plaintext", &buf)
	require.NoError(t, err)
	require.NotNil(t, handler)

	handler, err = HandlerFromLogType("json", &buf)
	require.NoError(t, err)
	require.NotNil(t, handler)

	_, err = HandlerFromLogType("xml", &buf)
	require.Error(t, err)
}
