package pipeline

import (
	"bufio"
	"fmt"

	"github.com/printcraft/m3dhost/gcode"
)

// Validate drops commands this printer can't honor (M82/M83 extruder
// absolute/relative mode, since extrusion is always tracked in relative
// terms by the firmware, and G21 millimeter-units since the printer has no
// other mode) and strips any T (tool selection) parameter from surviving
// commands, since the printer has a single fixed extruder.
func Validate(path string) error {
	return rewrite(path, func(scanner *bufio.Scanner, w *bufio.Writer) error {
		r := gcode.New()
		for scanner.Scan() {
			if r.Parse(scanner.Text()) {
				if r.HasParameter(gcode.ParamM) && (r.GetValue(gcode.ParamM) == "82" || r.GetValue(gcode.ParamM) == "83") {
					continue
				}
				if r.HasParameter(gcode.ParamG) && r.GetValue(gcode.ParamG) == "21" {
					continue
				}
				if r.HasParameter(gcode.ParamT) {
					r.RemoveParameter(gcode.ParamT)
				}
			}
			if err := writeRecord(w, r); err != nil {
				return fmt.Errorf("pipeline: validate: %w", err)
			}
		}
		return nil
	})
}
