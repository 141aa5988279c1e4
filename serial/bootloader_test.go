package serial_test

import (
	"testing"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBootloaderRequest_MatchesM115S628(t *testing.T) {
	r := gcode.New()
	require.True(t, r.Parse("M115 S628"))
	assert.True(t, serial.IsBootloaderRequest(r))
}

func TestIsBootloaderRequest_RejectsOtherM115(t *testing.T) {
	r := gcode.New()
	require.True(t, r.Parse("M115"))
	assert.False(t, serial.IsBootloaderRequest(r))

	require.True(t, r.Parse("M115 S1"))
	assert.False(t, serial.IsBootloaderRequest(r))
}
