package pipeline

import (
	"bufio"
	"fmt"
	"math"

	"github.com/printcraft/m3dhost/gcode"
)

const segmentLength = 2.0

// BedCompensation adds the printer's four-corner bed-level Z correction
// (geom.BedOrientation.HeightAdjustment) to every extruding move, breaking
// long moves into sub-segments of at most segmentLength so the correction
// tracks curvature across the bed rather than jumping at move boundaries.
// heightOffset is an additional fixed Z bias applied to every Z value
// (the printer's overall bed height trim).
func BedCompensation(path string, orientation heightAdjuster, heightOffset float64) error {
	return rewrite(path, func(scanner *bufio.Scanner, w *bufio.Writer) error {
		r := gcode.New()
		relative, changesPlane := false, false
		var posAbsX, posAbsY float64
		var posX, posY, posZ, posE float64

		for scanner.Scan() {
			if !r.Parse(scanner.Text()) || !r.HasParameter(gcode.ParamG) {
				if err := writeRecord(w, r); err != nil {
					return fmt.Errorf("pipeline: bed compensation: %w", err)
				}
				continue
			}

			switch r.GetValue(gcode.ParamG) {
			case "0", "1":
				if !relative {
					if r.HasParameter(gcode.ParamX) || r.HasParameter(gcode.ParamY) {
						changesPlane = true
					}
					if r.HasParameter(gcode.ParamZ) {
						r.SetValue(gcode.ParamZ, formatFloat(parseFloatOrZero(r.GetValue(gcode.ParamZ))+heightOffset))
					}

					dx, dy, dz, de := 0.0, 0.0, 0.0, 0.0
					if v, ok := floatParam(r, gcode.ParamX); ok {
						dx = v - posX
					}
					if v, ok := floatParam(r, gcode.ParamY); ok {
						dy = v - posY
					}
					if v, ok := floatParam(r, gcode.ParamZ); ok {
						dz = v - posZ
					}
					if v, ok := floatParam(r, gcode.ParamE); ok {
						de = v - posE
					}
					posAbsX += dx
					posAbsY += dy
					posX += dx
					posY += dy
					posZ += dz
					posE += de

					distance := distance2D(dx, dy)
					segments := uint32(1)
					if distance > segmentLength {
						segments = uint32(math.Ceil(distance / segmentLength))
					}

					absDiffX, absDiffY := posAbsX-dx, posAbsY-dy
					diffX, diffY, diffZ, diffE := posX-dx, posY-dy, posZ-dz, posE-de
					var ratioX, ratioY, ratioZ, ratioE float64
					if distance != 0 {
						ratioX, ratioY, ratioZ, ratioE = dx/distance, dy/distance, dz/distance, de/distance
					}

					if de > 0 {
						for i := uint32(1); i <= segments; i++ {
							var tmpAbsX, tmpAbsY, tmpX, tmpY, tmpZ, tmpE float64
							if i == segments {
								tmpAbsX, tmpAbsY = posAbsX, posAbsY
								tmpX, tmpY, tmpZ, tmpE = posX, posY, posZ, posE
							} else {
								tmpAbsX = absDiffX + float64(i)*segmentLength*ratioX
								tmpAbsY = absDiffY + float64(i)*segmentLength*ratioY
								tmpX = diffX + float64(i)*segmentLength*ratioX
								tmpY = diffY + float64(i)*segmentLength*ratioY
								tmpZ = diffZ + float64(i)*segmentLength*ratioZ
								tmpE = diffE + float64(i)*segmentLength*ratioE
							}

							height := orientation.HeightAdjustment(tmpAbsX, tmpAbsY)

							if i != segments {
								extra := gcode.New()
								extra.SetValue(gcode.ParamG, r.GetValue(gcode.ParamG))
								if r.HasParameter(gcode.ParamX) {
									extra.SetValue(gcode.ParamX, formatFloat(posX-dx+tmpX-diffX))
								}
								if r.HasParameter(gcode.ParamY) {
									extra.SetValue(gcode.ParamY, formatFloat(posY-dy+tmpY-diffY))
								}
								if r.HasParameter(gcode.ParamF) && i == 1 {
									extra.SetValue(gcode.ParamF, r.GetValue(gcode.ParamF))
								}
								switch {
								case changesPlane:
									extra.SetValue(gcode.ParamZ, formatFloat(posZ-dz+tmpZ-diffZ+height))
								case r.HasParameter(gcode.ParamZ):
									extra.SetValue(gcode.ParamZ, formatFloat(posZ-dz+tmpZ-diffZ))
								}
								extra.SetValue(gcode.ParamE, formatFloat(posE-de+tmpE-diffE))
								if err := writeRecord(w, extra); err != nil {
									return fmt.Errorf("pipeline: bed compensation extra segment: %w", err)
								}
							} else if changesPlane {
								if r.HasParameter(gcode.ParamZ) {
									r.SetValue(gcode.ParamZ, formatFloat(parseFloatOrZero(r.GetValue(gcode.ParamZ))+height))
								} else {
									r.SetValue(gcode.ParamZ, formatFloat(diffZ+dz+height))
								}
							}
						}
					} else if changesPlane {
						height := orientation.HeightAdjustment(posAbsX, posAbsY)
						if r.HasParameter(gcode.ParamZ) {
							r.SetValue(gcode.ParamZ, formatFloat(parseFloatOrZero(r.GetValue(gcode.ParamZ))+height))
						} else {
							r.SetValue(gcode.ParamZ, formatFloat(posZ+height))
						}
					}
				}

			case "28":
				posX, posAbsX = 54, 54
				posY, posAbsY = 50, 50
			case "90":
				relative = false
			case "91":
				relative = true
			case "92":
				if !r.HasParameter(gcode.ParamX) && !r.HasParameter(gcode.ParamY) && !r.HasParameter(gcode.ParamZ) && !r.HasParameter(gcode.ParamE) {
					r.SetValue(gcode.ParamX, "0")
					r.SetValue(gcode.ParamY, "0")
					r.SetValue(gcode.ParamZ, "0")
					r.SetValue(gcode.ParamE, "0")
				} else {
					if v, ok := floatParam(r, gcode.ParamX); ok {
						posX = v
					}
					if v, ok := floatParam(r, gcode.ParamY); ok {
						posY = v
					}
					if v, ok := floatParam(r, gcode.ParamZ); ok {
						posZ = v
					}
					if v, ok := floatParam(r, gcode.ParamE); ok {
						posE = v
					}
				}
			}

			if err := writeRecord(w, r); err != nil {
				return fmt.Errorf("pipeline: bed compensation: %w", err)
			}
		}
		return nil
	})
}

// heightAdjuster is the subset of geom.BedOrientation's behavior this stage
// needs, kept as an interface so tests can substitute a fixed offset.
type heightAdjuster interface {
	HeightAdjustment(x, y float64) float64
}

func distance2D(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}
