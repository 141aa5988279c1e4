package pipeline

import (
	"bufio"
	"fmt"

	"github.com/printcraft/m3dhost/gcode"
)

// maxFeedRate is the printer's maximum meaningful feed rate in mm/s; any
// command above it is treated as if it were exactly at the cap.
const maxFeedRate = 60.0001

// FeedRateConversion rewrites the F value of every G command from mm/min into the
// printer's native 30-830 motor-speed scale: faster commanded feed rates
// map to lower native values, with no command allowed to exceed the cap.
func FeedRateConversion(path string) error {
	return rewrite(path, func(scanner *bufio.Scanner, w *bufio.Writer) error {
		r := gcode.New()
		for scanner.Scan() {
			if r.Parse(scanner.Text()) && r.HasParameter(gcode.ParamG) && r.HasParameter(gcode.ParamF) {
				feedRate := parseFloatOrZero(r.GetValue(gcode.ParamF)) / 60
				if feedRate > maxFeedRate {
					feedRate = maxFeedRate
				}
				r.SetValue(gcode.ParamF, formatFloat(30+(1-feedRate/maxFeedRate)*800))
			}
			if err := writeRecord(w, r); err != nil {
				return fmt.Errorf("pipeline: feed rate conversion: %w", err)
			}
		}
		return nil
	})
}
