package pipeline

import (
	"bufio"
	"fmt"
	"math"
	"strings"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/geom"
)

const (
	wavePeriod        = 5.0
	wavePeriodQuarter = wavePeriod / 4.0
	waveSize          = 0.15
)

// waveStepper reproduces getCurrentAdjustmentZ's static 4-phase counter: a
// small Z ripple of amplitude waveSize applied once per extruding
// sub-segment, shared across the whole wave-bonding pass.
func waveStepper() func() float64 {
	step := uint8(0)
	return func() float64 {
		var adjustment float64
		switch {
		case step == 0:
			adjustment = 1
		case step == 2:
			adjustment = -1.5
		default:
			adjustment = 0
		}
		step = (step + 1) % 4
		return adjustment * waveSize
	}
}

// WaveBond adds a Z "wave" ripple to the first printed layer's extruding
// moves, breaking them into sub-segments of at most a quarter wave period,
// and inserts a dwell (tack point) at sharp corners on that layer to help
// the extrudate stick before the head moves on.
func WaveBond(path string) error {
	return rewrite(path, func(scanner *bufio.Scanner, w *bufio.Writer) error {
		nextAdjustment := waveStepper()

		r := gcode.New()
		var previous, reference *gcode.Record
		relative, changesPlane := false, false
		var layer, corners uint32
		var posX, posY, posZ, posE float64

		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, ";LAYER:") {
				layer++
			}

			parsed := r.Parse(line)

			if parsed && layer == 1 && r.HasParameter(gcode.ParamG) {
				switch r.GetValue(gcode.ParamG) {
				case "0", "1":
					if !relative {
						if r.HasParameter(gcode.ParamX) || r.HasParameter(gcode.ParamY) {
							changesPlane = true
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
						posX += dx
						posY += dy
						posZ += dz
						posE += de

						distance := geom.Distance(geom.Point{X: dx, Y: dy}, geom.Point{})
						waveRatio := uint32(1)
						if distance > wavePeriodQuarter {
							waveRatio = uint32(math.Ceil(distance / wavePeriodQuarter))
						}

						diffX, diffY, diffZ, diffE := posX-dx, posY-dy, posZ-dz, posE-de
						var ratioX, ratioY, ratioZ, ratioE float64
						if distance != 0 {
							ratioX, ratioY, ratioZ, ratioE = dx/distance, dy/distance, dz/distance, de/distance
						}

						if de > 0 {
							if previous != nil {
								switch {
								case corners <= 1 && geom.IsSharpCorner(gcodePoint(r), gcodePoint(previous)):
									if reference == nil {
										if err := writeTackPoint(w, r, previous); err != nil {
											return err
										}
									}
									reference = cloneRecord(r)
									corners++
								case corners >= 1 && reference != nil && geom.IsSharpCorner(gcodePoint(r), gcodePoint(reference)):
									if err := writeTackPoint(w, r, reference); err != nil {
										return err
									}
									reference = cloneRecord(r)
								}
							}

							for i := uint32(1); i <= waveRatio; i++ {
								var tmpX, tmpY, tmpZ, tmpE float64
								if i == waveRatio {
									tmpX, tmpY, tmpZ, tmpE = posX, posY, posZ, posE
								} else {
									tmpX = diffX + float64(i)*wavePeriodQuarter*ratioX
									tmpY = diffY + float64(i)*wavePeriodQuarter*ratioY
									tmpZ = diffZ + float64(i)*wavePeriodQuarter*ratioZ
									tmpE = diffE + float64(i)*wavePeriodQuarter*ratioE
								}

								if i != waveRatio {
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
										extra.SetValue(gcode.ParamZ, formatFloat(posZ-dz+tmpZ-diffZ+nextAdjustment()))
									case r.HasParameter(gcode.ParamZ):
										extra.SetValue(gcode.ParamZ, formatFloat(posZ-dz+tmpZ-diffZ))
									}
									extra.SetValue(gcode.ParamE, formatFloat(posE-de+tmpE-diffE))
									if err := writeRecord(w, extra); err != nil {
										return fmt.Errorf("pipeline: wave bond extra segment: %w", err)
									}
								} else if changesPlane {
									if r.HasParameter(gcode.ParamZ) {
										r.SetValue(gcode.ParamZ, formatFloat(parseFloatOrZero(r.GetValue(gcode.ParamZ))+nextAdjustment()))
									} else {
										r.SetValue(gcode.ParamZ, formatFloat(diffZ+dz+nextAdjustment()))
									}
								}
							}
						}
					}
					previous = cloneRecord(r)

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
			}

			if err := writeRecord(w, r); err != nil {
				return fmt.Errorf("pipeline: wave bond: %w", err)
			}
		}
		return nil
	})
}

// cloneRecord copies the current parse result out of a scratch Record so
// it survives the next Parse call, matching the source's pass-by-value
// Gcode previousGcode/refrenceGcode locals.
func cloneRecord(r *gcode.Record) *gcode.Record {
	c := gcode.New()
	c.Parse(r.OriginalCommand())
	return c
}

func gcodePoint(r *gcode.Record) geom.Point {
	var p geom.Point
	if v, ok := floatParam(r, gcode.ParamX); ok {
		p.X = v
	}
	if v, ok := floatParam(r, gcode.ParamY); ok {
		p.Y = v
	}
	return p
}

func writeTackPoint(w *bufio.Writer, point, reference *gcode.Record) error {
	tack := geom.CreateTackPoint(gcodePoint(point), gcodePoint(reference))
	if tack.IsEmpty() {
		return nil
	}
	return writeRecord(w, tack)
}
