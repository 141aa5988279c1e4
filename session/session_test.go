package session_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLink struct {
	asciiSent   []string
	binarySent  []*gcode.Record
	asciiResp   []string
	binaryResp  []string
	closeCalled bool
}

func (f *fakeLink) SendASCII(data string) error {
	f.asciiSent = append(f.asciiSent, data)
	return nil
}

func (f *fakeLink) ReceiveASCII() (string, error) {
	if len(f.asciiResp) == 0 {
		return "", nil
	}
	r := f.asciiResp[0]
	f.asciiResp = f.asciiResp[1:]
	return r, nil
}

func (f *fakeLink) SendBinary(r *gcode.Record) error {
	f.binarySent = append(f.binarySent, r)
	return nil
}

func (f *fakeLink) ReceiveBinary() (string, error) {
	if len(f.binaryResp) == 0 {
		return "", nil
	}
	r := f.binaryResp[0]
	f.binaryResp = f.binaryResp[1:]
	return r, nil
}

func (f *fakeLink) Close() error {
	f.closeCalled = true
	return nil
}

func TestSendRequest_UsesBinaryFramingInRuntimeMode(t *testing.T) {
	l := &fakeLink{}
	s := session.New(l, nil)
	require.NoError(t, s.SendRequest("M115"))
	assert.Len(t, l.binarySent, 1)
	assert.Empty(t, l.asciiSent)
}

func TestSendRequest_UsesASCIIFramingInBootloaderMode(t *testing.T) {
	l := &fakeLink{asciiResp: []string{"\r"}}
	s := session.New(l, func() (session.Link, error) { return l, nil })
	require.NoError(t, s.EnterBootloader())
	require.NoError(t, s.SendRequest("E"))
	assert.Contains(t, l.asciiSent, "E")
}

func TestEnterExitBootloader_ToggleModeAndReconnect(t *testing.T) {
	reconnected := 0
	l := &fakeLink{}
	s := session.New(l, func() (session.Link, error) {
		reconnected++
		return l, nil
	})

	require.NoError(t, s.EnterBootloader())
	assert.True(t, s.BootloaderMode)

	require.NoError(t, s.ExitBootloader())
	assert.False(t, s.BootloaderMode)

	assert.Equal(t, 2, reconnected)
}

func TestCollectInformation_ParsesFirmwareIdentityAndEeprom(t *testing.T) {
	l := &fakeLink{
		binaryResp: []string{
			"FIRMWARE_VERSION:2016050301 SERIAL_NUMBER:BK15033001100",
			dtFloat(1.5), dtFloat(2.5), dtFloat(3.5), dtFloat(4.5), dtFloat(0.2),
			dtFloat(0.1), dtFloat(0.1), dtFloat(1500),
			dtFloat(1), dtFloat(0), dtFloat(0), dtFloat(0),
			"ZV:1 S:3",
			"DT:1", "DT:5", "DT:120",
		},
	}
	s := session.New(l, nil)
	require.NoError(t, s.CollectInformation())

	assert.Equal(t, "2016050301", s.FirmwareVersion)
	assert.Equal(t, "BK15033001100", s.SerialNumber)
	assert.True(t, s.ValidZ)
	assert.Equal(t, uint8(3), s.Status)
	assert.True(t, s.ValidBedOrientation)
	assert.Equal(t, 220, s.FilamentTemperature)
}

func dtFloat(f float64) string {
	bits := math.Float32bits(float32(f))
	return "DT:" + strconv.FormatUint(uint64(bits), 10)
}
