package pipeline

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/geom"
)

// boundedTemperature clamps a requested extruder temperature to the
// printer's safe range.
func boundedTemperature(t int) int {
	switch {
	case t > 285:
		return 285
	case t < 150:
		return 150
	default:
		return t
	}
}

// ThermalBond issues a higher first-layer nozzle temperature (boosted by
// 10C for PLA, 15C otherwise) to improve bed adhesion, drops back to the
// nominal temperature at the second layer, strips the file's own
// M104/M105/M106/M107/M109 commands from the first ;LAYER: marker onward
// (the first layer included), and — when wave bonding is not already
// covering it — inserts the same sharp-corner tack-point dwells on the
// first layer for ABS/HIPS/PLA filaments.
func ThermalBond(path string, filament FilamentType, filamentTemperature int, waveBondingActive, overrideWaveBonding bool) error {
	return rewrite(path, func(scanner *bufio.Scanner, w *bufio.Writer) error {
		r := gcode.New()
		var previous, reference *gcode.Record
		relative := false
		var layer, corners uint32

		for scanner.Scan() {
			line := scanner.Text()
			if layer < 2 && strings.Contains(line, ";LAYER:") {
				if layer == 0 {
					boost := 15
					if filament == FilamentPLA {
						boost = 10
					}
					if err := writeLine(w, fmt.Sprintf("M109 S%d", boundedTemperature(filamentTemperature+boost))); err != nil {
						return err
					}
				} else {
					if err := writeLine(w, fmt.Sprintf("M104 S%d", filamentTemperature)); err != nil {
						return err
					}
				}
				layer++
			}

			if !r.Parse(line) {
				if err := writeRecord(w, r); err != nil {
					return fmt.Errorf("pipeline: thermal bond: %w", err)
				}
				continue
			}

			if layer > 0 && r.HasParameter(gcode.ParamM) {
				switch r.GetValue(gcode.ParamM) {
				case "104", "105", "106", "107", "109":
					continue
				}
			}

			if layer == 1 {
				if !overrideWaveBonding && !waveBondingActive && r.HasParameter(gcode.ParamG) {
					switch r.GetValue(gcode.ParamG) {
					case "0", "1":
						if !relative && previous != nil &&
							(filament == FilamentABS || filament == FilamentHIPS || filament == FilamentPLA) {
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
					case "90":
						relative = false
					case "91":
						relative = true
					}
				}
				previous = cloneRecord(r)
			}

			if err := writeRecord(w, r); err != nil {
				return fmt.Errorf("pipeline: thermal bond: %w", err)
			}
		}
		return nil
	})
}
