package motion_test

import (
	"testing"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SeedsFixedStartPosition(t *testing.T) {
	s := motion.New()
	assert.Equal(t, 54.0, s.X)
	assert.Equal(t, 50.0, s.Y)
	assert.Equal(t, 0.4, s.Z)
}

func TestAdvance_AbsoluteMove(t *testing.T) {
	s := motion.New()
	r := gcode.New()
	require.True(t, r.Parse("G1 X60 Y55 E1.5 F1200"))

	next, d := motion.Advance(s, r)
	assert.Equal(t, 60.0, next.X)
	assert.Equal(t, 55.0, next.Y)
	assert.InDelta(t, 7.81025, d.Distance, 1e-4)
	assert.Equal(t, motion.Positive, d.DirX)
	assert.Equal(t, motion.Positive, d.DirY)
	assert.True(t, d.HasE)
}

func TestAdvance_RelativeMove(t *testing.T) {
	s := motion.New()
	s.RelativeMode = true
	r := gcode.New()
	require.True(t, r.Parse("G1 X1 Y-1"))

	next, d := motion.Advance(s, r)
	assert.Equal(t, 55.0, next.X)
	assert.Equal(t, 49.0, next.Y)
	assert.Equal(t, motion.Positive, d.DirX)
	assert.Equal(t, motion.Negative, d.DirY)
}

func TestAdvance_G28HomesXY(t *testing.T) {
	s := motion.State{X: 10, Y: 10, Z: 5}
	r := gcode.New()
	require.True(t, r.Parse("G28"))

	next, _ := motion.Advance(s, r)
	assert.Equal(t, 54.0, next.X)
	assert.Equal(t, 50.0, next.Y)
	assert.Equal(t, 5.0, next.Z)
}

func TestAdvance_G92WithoutAxesResetsAll(t *testing.T) {
	s := motion.State{X: 10, Y: 10, Z: 5, E: 3}
	r := gcode.New()
	require.True(t, r.Parse("G92"))

	next, _ := motion.Advance(s, r)
	assert.Equal(t, 0.0, next.X)
	assert.Equal(t, 0.0, next.Y)
	assert.Equal(t, 0.0, next.Z)
	assert.Equal(t, 0.0, next.E)
}

func TestAdvance_G92WithAxisOnlySetsThatAxis(t *testing.T) {
	s := motion.State{X: 10, Y: 10, Z: 5, E: 3}
	r := gcode.New()
	require.True(t, r.Parse("G92 E0"))

	next, _ := motion.Advance(s, r)
	assert.Equal(t, 10.0, next.X)
	assert.Equal(t, 0.0, next.E)
}

func TestAdvance_G90G91ToggleRelativeMode(t *testing.T) {
	s := motion.New()
	r := gcode.New()
	require.True(t, r.Parse("G91"))
	next, _ := motion.Advance(s, r)
	assert.True(t, next.RelativeMode)

	require.True(t, r.Parse("G90"))
	next, _ = motion.Advance(next, r)
	assert.False(t, next.RelativeMode)
}
