// Package motion implements a pure per-line abstract interpreter of the
// motion-affecting G-codes (G0/G1/G28/G90/G91/G92). The pipeline stages do
// not call Advance or New: each keeps its own position bookkeeping, and only
// BacklashCompensation uses this package, for its Direction classification.
package motion

import (
	"math"
	"strconv"

	"github.com/printcraft/m3dhost/gcode"
)

// Direction classifies a delta's sign on one axis.
type Direction int

const (
	Neither Direction = iota
	Positive
	Negative
)

// DirectionOf classifies delta using the same epsilon as the source
// (1e-9, standing in for DBL_EPSILON-style comparisons against zero).
func DirectionOf(delta float64) Direction {
	const eps = 1e-9
	switch {
	case delta > eps:
		return Positive
	case delta < -eps:
		return Negative
	default:
		return Neither
	}
}

// State is the motion-tracker's state: current relative mode and position,
// carried across lines of a single pipeline pass.
type State struct {
	RelativeMode bool
	X, Y, Z, E   float64
	FeedRate     float64
}

// New returns a State seeded at the source's fixed starting position
// (X=54, Y=50, Z=0.4).
func New() State {
	return State{X: 54, Y: 50, Z: 0.4}
}

// Delta is the per-axis motion produced by advancing a State through one
// command, along with its planar distance and per-axis direction
// classification.
type Delta struct {
	DX, DY, DZ, DE     float64
	Distance           float64
	DirX, DirY, DirZ   Direction
	ChangedPlane       bool // Z changed by this command
	HasX, HasY, HasZ   bool
	HasE               bool
}

func fvalue(r *gcode.Record, p gcode.Param) (float64, bool) {
	if !r.HasParameter(p) {
		return 0, false
	}
	f, err := strconv.ParseFloat(r.GetValue(p), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Advance interprets record against state, returning the new state and the
// delta this command produced. It handles G0/G1 (linear motion under the
// current relative mode), G28 (home X/Y to 54,50), G90/G91 (absolute/
// relative mode), and G92 (position reset/override).
func Advance(state State, r *gcode.Record) (State, Delta) {
	next := state
	var d Delta

	if !r.HasParameter(gcode.ParamG) {
		return next, d
	}

	switch r.GetValue(gcode.ParamG) {
	case "0", "1":
		prevX, prevY, prevZ := state.X, state.Y, state.Z
		if x, ok := fvalue(r, gcode.ParamX); ok {
			d.HasX = true
			if state.RelativeMode {
				next.X = state.X + x
			} else {
				next.X = x
			}
		}
		if y, ok := fvalue(r, gcode.ParamY); ok {
			d.HasY = true
			if state.RelativeMode {
				next.Y = state.Y + y
			} else {
				next.Y = y
			}
		}
		if z, ok := fvalue(r, gcode.ParamZ); ok {
			d.HasZ = true
			if state.RelativeMode {
				next.Z = state.Z + z
			} else {
				next.Z = z
			}
		}
		if e, ok := fvalue(r, gcode.ParamE); ok {
			d.HasE = true
			if state.RelativeMode {
				next.E = state.E + e
			} else {
				next.E = e
			}
		}
		if f, ok := fvalue(r, gcode.ParamF); ok {
			next.FeedRate = f
		}
		d.DX = next.X - prevX
		d.DY = next.Y - prevY
		d.DZ = next.Z - prevZ
		d.DE = next.E - state.E
		d.Distance = distance2D(d.DX, d.DY)
		d.DirX = DirectionOf(d.DX)
		d.DirY = DirectionOf(d.DY)
		d.DirZ = DirectionOf(d.DZ)
		d.ChangedPlane = d.DZ != 0

	case "28":
		next.X = 54
		next.Y = 50
		d.DX = next.X - state.X
		d.DY = next.Y - state.Y
		d.HasX, d.HasY = true, true
		d.Distance = distance2D(d.DX, d.DY)
		d.DirX = DirectionOf(d.DX)
		d.DirY = DirectionOf(d.DY)

	case "90":
		next.RelativeMode = false

	case "91":
		next.RelativeMode = true

	case "92":
		x, hasX := fvalue(r, gcode.ParamX)
		y, hasY := fvalue(r, gcode.ParamY)
		z, hasZ := fvalue(r, gcode.ParamZ)
		e, hasE := fvalue(r, gcode.ParamE)
		if hasX || hasY || hasZ || hasE {
			if hasX {
				next.X = x
			}
			if hasY {
				next.Y = y
			}
			if hasZ {
				next.Z = z
			}
			if hasE {
				next.E = e
			}
		} else {
			next.X, next.Y, next.Z, next.E = 0, 0, 0, 0
		}
	}

	return next, d
}

func distance2D(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}
