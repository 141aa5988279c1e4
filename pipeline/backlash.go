package pipeline

import (
	"bufio"
	"fmt"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/motion"
)

// BacklashCompensation inserts a corrective move before any X/Y direction
// reversal, offsetting by the printer's measured per-axis backlash amount
// at a fixed backlashSpeed, then restores the command's original feed rate.
// The compensation offset accumulates and persists across subsequent moves
// until the axis reverses again.
func BacklashCompensation(path string, backlashX, backlashY, backlashSpeed float64) error {
	return rewrite(path, func(scanner *bufio.Scanner, w *bufio.Writer) error {
		r := gcode.New()
		relative := false
		feedRate := "1000"
		prevDirX, prevDirY := motion.Neither, motion.Neither
		var compX, compY float64
		var posX, posY, posZ, posE float64

		for scanner.Scan() {
			if !r.Parse(scanner.Text()) || !r.HasParameter(gcode.ParamG) {
				if err := writeRecord(w, r); err != nil {
					return fmt.Errorf("pipeline: backlash compensation: %w", err)
				}
				continue
			}

			switch r.GetValue(gcode.ParamG) {
			case "0", "1":
				if !relative {
					if r.HasParameter(gcode.ParamF) {
						feedRate = r.GetValue(gcode.ParamF)
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

					dirX := directionOrPrevious(dx, prevDirX)
					dirY := directionOrPrevious(dy, prevDirY)

					if (dirX != prevDirX && prevDirX != motion.Neither) || (dirY != prevDirY && prevDirY != motion.Neither) {
						extra := gcode.New()
						extra.SetValue(gcode.ParamG, r.GetValue(gcode.ParamG))

						if dirX != prevDirX && prevDirX != motion.Neither {
							if dirX == motion.Positive {
								compX += backlashX
							} else {
								compX -= backlashX
							}
						}
						if dirY != prevDirY && prevDirY != motion.Neither {
							if dirY == motion.Positive {
								compY += backlashY
							} else {
								compY -= backlashY
							}
						}

						extra.SetValue(gcode.ParamX, formatFloat(posX+compX))
						extra.SetValue(gcode.ParamY, formatFloat(posY+compY))
						extra.SetValue(gcode.ParamF, formatFloat(backlashSpeed))
						if err := writeRecord(w, extra); err != nil {
							return fmt.Errorf("pipeline: backlash compensation extra move: %w", err)
						}

						r.SetValue(gcode.ParamF, feedRate)
					}

					if r.HasParameter(gcode.ParamX) {
						r.SetValue(gcode.ParamX, formatFloat(parseFloatOrZero(r.GetValue(gcode.ParamX))+compX))
					}
					if r.HasParameter(gcode.ParamY) {
						r.SetValue(gcode.ParamY, formatFloat(parseFloatOrZero(r.GetValue(gcode.ParamY))+compY))
					}

					posX += dx
					posY += dy
					posZ += dz
					posE += de
					prevDirX, prevDirY = dirX, dirY
				}

			case "28":
				posX, posY = 54, 50
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
				return fmt.Errorf("pipeline: backlash compensation: %w", err)
			}
		}
		return nil
	})
}

// directionOrPrevious classifies delta's sign, falling back to the
// previous direction when delta is within epsilon of zero — matching the
// source's ternary chain, which never resets to Neither once an axis has
// moved.
func directionOrPrevious(delta float64, previous motion.Direction) motion.Direction {
	switch motion.DirectionOf(delta) {
	case motion.Neither:
		return previous
	case motion.Positive:
		return motion.Positive
	default:
		return motion.Negative
	}
}
