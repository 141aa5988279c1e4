package serial_test

import (
	"os"
	"testing"

	"github.com/printcraft/m3dhost/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPTYPair_ResolvesSlavePath(t *testing.T) {
	pair, err := serial.OpenPTYPair()
	require.NoError(t, err)
	defer pair.Close()

	assert.NotEmpty(t, pair.SlavePath)

	info, err := os.Stat(pair.SlavePath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
