package geom

import (
	"math"
	"strconv"

	"github.com/printcraft/m3dhost/gcode"
)

// Tier identifies one of the three Z bands the printable volume is
// partitioned into.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// Bounds is an axis-aligned printable-area rectangle plus its Z band.
type Bounds struct {
	MinX, MaxX, MinY, MaxY, MinZ, MaxZ float64
}

// TierBounds are the fixed printable-volume bounds from the external
// interfaces table.
var TierBounds = map[Tier]Bounds{
	TierLow:    {0.0, 113.0, 0.0, 107.0, 0.0, 5.0},
	TierMedium: {2.8, 110.2, -6.6, 107.0, 5.0, 73.5},
	TierHigh:   {2.35, 82.0, 20.05, 92.95, 73.5, 112.0},
}

// BedLowMinZ and BedHighMaxZ are the overall Z envelope used by the
// dimension check regardless of tier.
const (
	BedLowMinZ  = 0.0
	BedHighMaxZ = 112.0
)

// TierForZ selects the Z-tier containing z, by Z value alone.
func TierForZ(z float64) Tier {
	switch {
	case z < TierBounds[TierLow].MaxZ:
		return TierLow
	case z < TierBounds[TierMedium].MaxZ:
		return TierMedium
	default:
		return TierHigh
	}
}

// CreateTackPoint builds a delay command (G4 P<ceil(distance)>) between
// point and reference if that ceiling exceeds 5 units; otherwise it returns
// an empty record.
func CreateTackPoint(point, reference Point) *gcode.Record {
	r := gcode.New()
	d := Distance(point, reference)
	ceilD := math.Ceil(d)
	if ceilD > 5 {
		r.SetValue(gcode.ParamG, "4")
		r.SetValue(gcode.ParamP, strconv.FormatFloat(ceilD, 'f', 0, 64))
	}
	return r
}

// BedOrientation holds the four corner Z-orientation corrections and the
// four per-corner offsets used by HeightAdjustment, seeded from Printer
// Session state.
type BedOrientation struct {
	BackRight, BackLeft, FrontLeft, FrontRight float64
	BackRightOffset, BackLeftOffset            float64
	FrontLeftOffset, FrontRightOffset          float64
}

// HeightAdjustment interpolates the bed-levelling Z offset at (x, y) from
// four corner measurements, dividing the bed into four triangles around a
// fixed center point.
func (o BedOrientation) HeightAdjustment(x, y float64) float64 {
	backRight := Vector{99, 95, o.BackRight + o.BackRightOffset}
	backLeft := Vector{9, 95, o.BackLeft + o.BackLeftOffset}
	frontLeft := Vector{9, 5, o.FrontLeft + o.FrontLeftOffset}
	frontRight := Vector{99, 5, o.FrontRight + o.FrontRightOffset}
	center := Vector{54, 50, 0}

	pa, pb, pc, pd := PlaneEquation(backLeft, backRight, center)
	pe1, pe2, pe3, pe4 := PlaneEquation(backLeft, frontLeft, center)
	pf1, pf2, pf3, pf4 := PlaneEquation(backRight, frontRight, center)
	pg1, pg2, pg3, pg4 := PlaneEquation(frontLeft, frontRight, center)

	point := Vector{x, y, 0}
	z := func(a, b, c, d float64) float64 { return ZFromPlane(point, a, b, c, d) }

	switch {
	case x <= frontLeft.X && y >= backRight.Y:
		return (z(pa, pb, pc, pd) + z(pe1, pe2, pe3, pe4)) / 2
	case x <= frontLeft.X && y <= frontLeft.Y:
		return (z(pg1, pg2, pg3, pg4) + z(pe1, pe2, pe3, pe4)) / 2
	case x >= frontRight.X && y <= frontLeft.Y:
		return (z(pg1, pg2, pg3, pg4) + z(pf1, pf2, pf3, pf4)) / 2
	case x >= frontRight.X && y >= backRight.Y:
		return (z(pa, pb, pc, pd) + z(pf1, pf2, pf3, pf4)) / 2
	case x <= frontLeft.X:
		return z(pe1, pe2, pe3, pe4)
	case x >= frontRight.X:
		return z(pf1, pf2, pf3, pf4)
	case y >= backRight.Y:
		return z(pa, pb, pc, pd)
	case y <= frontLeft.Y:
		return z(pg1, pg2, pg3, pg4)
	case IsPointInTriangle(point, center, frontLeft, backLeft):
		return z(pe1, pe2, pe3, pe4)
	case IsPointInTriangle(point, center, frontRight, backRight):
		return z(pf1, pf2, pf3, pf4)
	case IsPointInTriangle(point, center, backLeft, backRight):
		return z(pa, pb, pc, pd)
	default:
		return z(pg1, pg2, pg3, pg4)
	}
}
