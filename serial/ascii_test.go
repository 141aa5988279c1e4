package serial_test

import (
	"testing"
	"time"

	"github.com/printcraft/m3dhost/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendASCII_WritesVerbatimWithNoTrailingNewline(t *testing.T) {
	pair, err := serial.OpenPTYPair()
	require.NoError(t, err)
	defer pair.Close()

	link, err := serial.Open(pair.SlavePath)
	require.NoError(t, err)
	defer link.Close()

	require.NoError(t, link.SendASCII("E"))

	buf := make([]byte, 16)
	n, err := pair.Master.ReadTimeout(buf, 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "E", string(buf[:n]))
}

func TestReceiveASCII_ReadsWhateverArrivesWithinDeadline(t *testing.T) {
	pair, err := serial.OpenPTYPair()
	require.NoError(t, err)
	defer pair.Close()

	link, err := serial.Open(pair.SlavePath)
	require.NoError(t, err)
	defer link.Close()

	_, err = pair.Master.Write([]byte("\r"))
	require.NoError(t, err)

	resp, err := link.ReceiveASCII()
	require.NoError(t, err)
	assert.Equal(t, "\r", resp)
}
