package gcode_test

import (
	"testing"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleMove(t *testing.T) {
	r := gcode.New()
	ok := r.Parse("G1 X10 Y20 F1200")
	require.True(t, ok)
	assert.True(t, r.IsParsed())
	assert.True(t, r.HasParameter(gcode.ParamG))
	assert.Equal(t, "1", r.GetValue(gcode.ParamG))
	assert.Equal(t, "10", r.GetValue(gcode.ParamX))
	assert.Equal(t, "20", r.GetValue(gcode.ParamY))
	assert.Equal(t, "1200", r.GetValue(gcode.ParamF))
}

func TestParse_HostCommand(t *testing.T) {
	r := gcode.New()
	ok := r.Parse("@request temperature;some comment")
	require.True(t, ok)
	assert.True(t, r.IsHostCommand())
	assert.Equal(t, "@request temperature", r.HostCommand())
}

func TestParse_StringTriggerConsumesRemainder(t *testing.T) {
	r := gcode.New()
	ok := r.Parse("M117 Printing object 1")
	require.True(t, ok)
	assert.Equal(t, "117", r.GetValue(gcode.ParamM))
	assert.Equal(t, " Printing object 1", r.GetValue(gcode.ParamString))
}

func TestParse_EmptyLineIsNotParsed(t *testing.T) {
	r := gcode.New()
	assert.False(t, r.Parse(""))
	assert.False(t, r.Parse("   "))
	assert.False(t, r.Parse(";a comment only"))
}

func TestParse_ResetsBetweenCalls(t *testing.T) {
	r := gcode.New()
	require.True(t, r.Parse("G1 X10"))
	require.True(t, r.Parse("G1 Y20"))
	assert.False(t, r.HasParameter(gcode.ParamX))
	assert.True(t, r.HasParameter(gcode.ParamY))
}

func TestGetASCII_CanonicalOrderAndFloatFormatting(t *testing.T) {
	r := gcode.New()
	require.True(t, r.Parse("G1 F1200 Y20 X10"))
	assert.Equal(t, "G1 X10.000000 Y20.000000 F1200.000000", r.GetASCII())
}

func TestGetASCII_HostCommandVerbatim(t *testing.T) {
	r := gcode.New()
	require.True(t, r.Parse("@home"))
	assert.Equal(t, "@home", r.GetASCII())
}

func TestGetBinary_HasFletcher16Trailer(t *testing.T) {
	r := gcode.New()
	require.True(t, r.Parse("G1 X10 Y20"))
	b := r.GetBinary()
	require.True(t, len(b) > 6)
	// dataType header is the first 4 bytes, little-endian.
	assert.Equal(t, byte(r.DataType()), b[0])
}

func TestSetValueAndRemoveParameter(t *testing.T) {
	r := gcode.New()
	assert.True(t, r.IsEmpty())
	r.SetValue(gcode.ParamX, "5")
	assert.False(t, r.IsEmpty())
	assert.True(t, r.HasParameter(gcode.ParamX))
	r.RemoveParameter(gcode.ParamX)
	assert.False(t, r.HasParameter(gcode.ParamX))
}
