package pipeline

import (
	"bufio"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/geom"
)

// DimensionCheck walks the file tracking the extruder's absolute position
// through G0/G1 moves under G90/G91 (G28 and G92 are not applied, unlike in
// the motion package's Advance), and reports whether every sampled point
// stays within the bed's tiered bounds (geom.TierBounds). It does not
// rewrite the file. ignoreLimitations disables the per-point bound checks
// but extents are still accumulated (used by the centering pass).
func DimensionCheck(path string, ignoreLimitations bool) (bool, Extents, error) {
	f, err := openRead(path)
	if err != nil {
		return false, Extents{}, err
	}
	defer f.Close()

	ext := NewExtents()
	localX, localY, localZ := 54.0, 50.0, 0.4
	relative := false
	tier := geom.TierLow
	ok := true

	r := gcode.New()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if !r.Parse(scanner.Text()) || !r.HasParameter(gcode.ParamG) {
			continue
		}
		switch r.GetValue(gcode.ParamG) {
		case "0", "1":
			if x, has := floatParam(r, gcode.ParamX); has {
				if relative {
					localX += x
				} else {
					localX = x
				}
			}
			if y, has := floatParam(r, gcode.ParamY); has {
				if relative {
					localY += y
				} else {
					localY = y
				}
			}
			if z, has := floatParam(r, gcode.ParamZ); has {
				if relative {
					localZ += z
				} else {
					localZ = z
				}
				if !ignoreLimitations && (localZ < geom.BedLowMinZ || localZ > geom.BedHighMaxZ) {
					ok = false
				}
				tier = geom.TierForZ(localZ)
			}

			switch tier {
			case geom.TierLow:
				b := geom.TierBounds[geom.TierLow]
				if !ignoreLimitations && outOfBounds(localX, localY, b) {
					ok = false
				}
				ext.MinXLow, ext.MaxXLow = minmax(ext.MinXLow, ext.MaxXLow, localX)
				ext.MinYLow, ext.MaxYLow = minmax(ext.MinYLow, ext.MaxYLow, localY)
			case geom.TierMedium:
				b := geom.TierBounds[geom.TierMedium]
				if !ignoreLimitations && outOfBounds(localX, localY, b) {
					ok = false
				}
				ext.MinXMedium, ext.MaxXMedium = minmax(ext.MinXMedium, ext.MaxXMedium, localX)
				ext.MinYMedium, ext.MaxYMedium = minmax(ext.MinYMedium, ext.MaxYMedium, localY)
			case geom.TierHigh:
				b := geom.TierBounds[geom.TierHigh]
				if !ignoreLimitations && outOfBounds(localX, localY, b) {
					ok = false
				}
				ext.MinXHigh, ext.MaxXHigh = minmax(ext.MinXHigh, ext.MaxXHigh, localX)
				ext.MinYHigh, ext.MaxYHigh = minmax(ext.MinYHigh, ext.MaxYHigh, localY)
			}
			ext.MinZ, ext.MaxZ = minmax(ext.MinZ, ext.MaxZ, localZ)

		case "90":
			relative = false
		case "91":
			relative = true
		}

		if !ok && !ignoreLimitations {
			return false, ext, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, ext, err
	}
	return ok, ext, nil
}

func outOfBounds(x, y float64, b geom.Bounds) bool {
	return x < b.MinX || x > b.MaxX || y < b.MinY || y > b.MaxY
}

func minmax(min, max, v float64) (float64, float64) {
	if v < min {
		min = v
	}
	if v > max {
		max = v
	}
	return min, max
}

func floatParam(r *gcode.Record, p gcode.Param) (float64, bool) {
	if !r.HasParameter(p) {
		return 0, false
	}
	return parseFloatOrZero(r.GetValue(p)), true
}
