package geom_test

import (
	"math"
	"testing"

	"github.com/printcraft/m3dhost/geom"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	d := geom.Distance(geom.Point{X: 0, Y: 0}, geom.Point{X: 3, Y: 4})
	assert.InDelta(t, 5.0, d, 1e-9)
}

func TestIsSharpCorner_OriginInputsGiveRightAngle(t *testing.T) {
	// Either point at the origin forces theta = acos(0) = pi/2, which is
	// the boundary and so not "sharp" (strictly less than pi/2).
	assert.False(t, geom.IsSharpCorner(geom.Point{}, geom.Point{X: 1, Y: 1}))
}

func TestIsSharpCorner_PreservesSquaredMagnitudeDenominator(t *testing.T) {
	point := geom.Point{X: 1, Y: 0}
	reference := geom.Point{X: 0, Y: 1}
	num := point.X*reference.X + point.Y*reference.Y
	denom := math.Pow(point.X*point.X+point.Y*point.Y, 2) * math.Pow(reference.X*reference.X+reference.Y*reference.Y, 2)
	want := math.Acos(num / denom)
	got := want > 0 && want < math.Pi/2
	assert.Equal(t, got, geom.IsSharpCorner(point, reference))
}

func TestPlaneEquation_FlatPlaneHasZeroZCoefficientFreeHeight(t *testing.T) {
	v1 := geom.Vector{X: 0, Y: 0, Z: 2}
	v2 := geom.Vector{X: 1, Y: 0, Z: 2}
	v3 := geom.Vector{X: 0, Y: 1, Z: 2}
	a, b, c, d := geom.PlaneEquation(v1, v2, v3)
	z := geom.ZFromPlane(geom.Vector{X: 5, Y: -3}, a, b, c, d)
	assert.InDelta(t, 2.0, z, 1e-9)
}

func TestIsPointInTriangle(t *testing.T) {
	v1 := geom.Vector{X: 0, Y: 0}
	v2 := geom.Vector{X: 10, Y: 0}
	v3 := geom.Vector{X: 0, Y: 10}
	assert.True(t, geom.IsPointInTriangle(geom.Vector{X: 1, Y: 1}, v1, v2, v3))
	assert.False(t, geom.IsPointInTriangle(geom.Vector{X: 9, Y: 9}, v1, v2, v3))
}
