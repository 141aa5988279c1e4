package pipeline

import (
	"bufio"
	"fmt"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/geom"
)

// CenterModel re-centers the print on the low tier's bed rectangle: a
// first pass accumulates per-tier extents exactly like DimensionCheck
// (limitations are never enforced here, matching the source, which runs
// this pass unconditionally before validation), then every X/Y in the file
// is displaced by the offset that centers the combined low/medium/high
// extents on the low tier's bed. Extents is returned so later stages
// (Prepare's corner-excess logic) can reuse it without re-walking
// the file.
func CenterModel(path string) (Extents, error) {
	_, ext, err := DimensionCheck(path, true)
	if err != nil {
		return Extents{}, err
	}

	low := geom.TierBounds[geom.TierLow]
	maxX := maxOf(ext.MaxXLow, ext.MaxXMedium, ext.MaxXHigh)
	minX := minOf(ext.MinXLow, ext.MinXMedium, ext.MinXHigh)
	maxY := maxOf(ext.MaxYLow, ext.MaxYMedium, ext.MaxYHigh)
	minY := minOf(ext.MinYLow, ext.MinYMedium, ext.MinYHigh)

	dispX := (low.MaxX - maxX - minX + low.MinX) / 2
	dispY := (low.MaxY - maxY - minY + low.MinY) / 2

	ext.MaxXLow += dispX
	ext.MaxXMedium += dispX
	ext.MaxXHigh += dispX
	ext.MinXLow += dispX
	ext.MinXMedium += dispX
	ext.MinXHigh += dispX
	ext.MaxYLow += dispY
	ext.MaxYMedium += dispY
	ext.MaxYHigh += dispY
	ext.MinYLow += dispY
	ext.MinYMedium += dispY
	ext.MinYHigh += dispY

	err = rewrite(path, func(scanner *bufio.Scanner, w *bufio.Writer) error {
		r := gcode.New()
		for scanner.Scan() {
			r.Parse(scanner.Text())
			if r.IsParsed() && r.HasParameter(gcode.ParamG) {
				if r.HasParameter(gcode.ParamX) {
					r.SetValue(gcode.ParamX, formatFloat(parseFloatOrZero(r.GetValue(gcode.ParamX))+dispX))
				}
				if r.HasParameter(gcode.ParamY) {
					r.SetValue(gcode.ParamY, formatFloat(parseFloatOrZero(r.GetValue(gcode.ParamY))+dispY))
				}
			}
			if err := writeRecord(w, r); err != nil {
				return fmt.Errorf("pipeline: center model: %w", err)
			}
		}
		return nil
	})
	return ext, err
}

func maxOf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
