package geom_test

import (
	"testing"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForZ(t *testing.T) {
	assert.Equal(t, geom.TierLow, geom.TierForZ(0))
	assert.Equal(t, geom.TierMedium, geom.TierForZ(10))
	assert.Equal(t, geom.TierHigh, geom.TierForZ(100))
}

func TestCreateTackPoint_ShortDistanceIsEmpty(t *testing.T) {
	r := geom.CreateTackPoint(geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 1})
	assert.True(t, r.IsEmpty())
}

func TestCreateTackPoint_LongDistanceIsDelay(t *testing.T) {
	r := geom.CreateTackPoint(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 10})
	require.False(t, r.IsEmpty())
	assert.Equal(t, "4", r.GetValue(gcode.ParamG))
}

func TestBedOrientation_ZeroCorrectionsGiveZeroAdjustment(t *testing.T) {
	// All four corners at the same height as the fixed center point means
	// every fitted plane is the z=0 plane everywhere.
	var o geom.BedOrientation
	assert.InDelta(t, 0.0, o.HeightAdjustment(54, 50), 1e-9)
	assert.InDelta(t, 0.0, o.HeightAdjustment(99, 95), 1e-9)
	assert.InDelta(t, 0.0, o.HeightAdjustment(9, 5), 1e-9)
	assert.InDelta(t, 0.0, o.HeightAdjustment(120, 120), 1e-9)
}
