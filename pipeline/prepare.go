package pipeline

import (
	"bufio"
	"fmt"
	"io"

	"github.com/printcraft/m3dhost/geom"
)

// FilamentType identifies a filament's thermal/bed-adhesion profile, used
// by Prepare's intro sequence and by ThermalBond.
type FilamentType int

const (
	FilamentABS FilamentType = iota
	FilamentPLA
	FilamentHIPS
	FilamentOther
)

// Prepare wraps the file with the printer's fixed startup and shutdown
// G-code sequences: homing, nozzle heat/prime, a slow initial layer height,
// and a cooldown/park outro that differs depending on how tall the print
// got. If leaveCornerExcess is set and the model didn't already touch the
// low tier's bed edges (per ext, from an earlier CenterModel/DimensionCheck
// pass), the nozzle primes its ooze into an unused bed corner instead of in
// place.
func Prepare(path string, filament FilamentType, filamentTemperature int, ext Extents, leaveCornerExcess bool) error {
	low := geom.TierBounds[geom.TierLow]

	var cornerX, cornerY float64
	if leaveCornerExcess {
		switch {
		case ext.MaxXLow < low.MaxX:
			cornerX = (low.MaxX - low.MinX) / 2
		case ext.MinXLow > low.MinX:
			cornerX = -(low.MaxX - low.MinX) / 2
		}
		switch {
		case ext.MaxYLow < low.MaxY:
			cornerY = (low.MaxY - low.MinY - 10) / 2
		case ext.MinYLow > low.MinY:
			cornerY = -(low.MaxY - low.MinY - 10) / 2
		}
	}

	return rewrite(path, func(scanner *bufio.Scanner, w *bufio.Writer) error {
		fanSpeed := "50"
		if filament == FilamentPLA {
			fanSpeed = "255"
		}

		intro := []string{
			"M106 S" + fanSpeed,
			"M17",
			"G90",
			fmt.Sprintf("M104 S%d", filamentTemperature),
			"G0 Z5 F2900",
			"G28",
		}
		for _, l := range intro {
			if err := writeLine(w, l); err != nil {
				return err
			}
		}

		if cornerX == 0 || cornerY == 0 {
			for _, l := range []string{
				"M18",
				fmt.Sprintf("M109 S%d", filamentTemperature),
				"G4 S2",
				"M17",
				"G91",
			} {
				if err := writeLine(w, l); err != nil {
					return err
				}
			}
		} else {
			for _, l := range []string{
				"G91",
				fmt.Sprintf("G0 X%s Y%s F2900", formatFloat(-cornerX), formatFloat(-cornerY)),
				"M18",
				fmt.Sprintf("M109 S%d", filamentTemperature),
				"M17",
				"G0 Z-4 F2900",
				"G0 E7.5 F2000",
				"G4 S3",
				fmt.Sprintf("G0 X%s Y%s Z-0.999 F2900", formatFloat(cornerX*0.1), formatFloat(cornerY*0.1)),
				fmt.Sprintf("G0 X%s Y%s F1000", formatFloat(cornerX*0.9), formatFloat(cornerY*0.9)),
			} {
				if err := writeLine(w, l); err != nil {
					return err
				}
			}
		}

		for _, l := range []string{"G92 E0", "G90", "G0 Z0.4 F2400"} {
			if err := writeLine(w, l); err != nil {
				return err
			}
		}

		for scanner.Scan() {
			if _, err := w.WriteString(scanner.Text() + "\n"); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil && err != io.EOF {
			return err
		}

		outro := []string{
			"G91",
			"G0 E-1 F2000",
			"G0 X5 Y5 F2000",
			"G0 E-8 F2000",
			"M104 S0",
		}
		for _, l := range outro {
			if err := writeLine(w, l); err != nil {
				return err
			}
		}
		if ext.MaxZ > 60 {
			if ext.MaxZ < 110 {
				if err := writeLine(w, "G0 Z3 F2900"); err != nil {
					return err
				}
			}
			for _, l := range []string{"G90", "G0 X90 Y84"} {
				if err := writeLine(w, l); err != nil {
					return err
				}
			}
		} else {
			for _, l := range []string{"G0 Z3 F2900", "G90", "G0 X95 Y95"} {
				if err := writeLine(w, l); err != nil {
					return err
				}
			}
		}
		if err := writeLine(w, "M18"); err != nil {
			return err
		}
		return writeLine(w, "M107")
	})
}
