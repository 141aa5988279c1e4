package serial_test

import (
	"time"

	"testing"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendBinary_WritesRecordWireEncoding(t *testing.T) {
	pair, err := serial.OpenPTYPair()
	require.NoError(t, err)
	defer pair.Close()

	link, err := serial.Open(pair.SlavePath)
	require.NoError(t, err)
	defer link.Close()

	r := gcode.New()
	require.True(t, r.Parse("G1 X10 N0"))

	require.NoError(t, link.SendBinary(r))

	buf := make([]byte, 64)
	n, err := pair.Master.ReadTimeout(buf, 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, r.GetBinary(), buf[:n])
}

func TestReceiveBinary_StripsTrailingNewlineAndCarriageReturn(t *testing.T) {
	pair, err := serial.OpenPTYPair()
	require.NoError(t, err)
	defer pair.Close()

	link, err := serial.Open(pair.SlavePath)
	require.NoError(t, err)
	defer link.Close()

	_, err = pair.Master.Write([]byte("ok 0\r\n"))
	require.NoError(t, err)

	resp, err := link.ReceiveBinary()
	require.NoError(t, err)
	assert.Equal(t, "ok 0", resp)
}
