// Package pipeline runs the ordered sequence of file-to-file G-code
// rewriting stages that turn a sliced model into a print ready to stream:
// dimension checking, centering, validation, preparation, wave/thermal
// bonding, bed compensation, backlash compensation, and feed-rate
// conversion. Each stage consumes the working file and replaces it in
// place, the way the source tool stages its preprocessors over a single
// scratch file in the print's working directory.
package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/printcraft/m3dhost/gcode"
)

// Extents tracks the running per-tier bounding box a dimension check or
// center pass accumulates while walking a file, mirroring the source's
// min/max-per-tier bookkeeping used by both checkPrintDimensions and
// centerModelPreprocessor.
type Extents struct {
	MinXLow, MaxXLow, MinYLow, MaxYLow             float64
	MinXMedium, MaxXMedium, MinYMedium, MaxYMedium float64
	MinXHigh, MaxXHigh, MinYHigh, MaxYHigh         float64
	MinZ, MaxZ                                     float64
}

// NewExtents returns an Extents whose min fields start at 1e18, so any first
// sample becomes its tier's min, and whose max fields start at 0, matching
// the source's 0/DBL_MAX seeding.
func NewExtents() Extents {
	const big = 1e18
	return Extents{
		MinXLow: big, MinYLow: big, MinXMedium: big, MinYMedium: big,
		MinXHigh: big, MinYHigh: big, MinZ: big,
	}
}

// rewrite moves file aside to a scratch path, calls fn with a reader over
// the scratch contents and a writer over the (recreated) original path,
// and unlinks the scratch file once fn returns successfully. This mirrors
// every *Preprocessor function in the source: rename-to-temp, process
// temp into the original name, unlink temp.
func rewrite(path string, fn func(*bufio.Scanner, *bufio.Writer) error) error {
	scratch := path + ".scratch"
	if err := os.Rename(path, scratch); err != nil {
		return fmt.Errorf("pipeline: stage scratch rename: %w", err)
	}

	in, err := os.Open(scratch)
	if err != nil {
		return fmt.Errorf("pipeline: open scratch: %w", err)
	}
	defer in.Close()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: create output: %w", err)
	}
	defer out.Close()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(out)

	if err := fn(scanner, writer); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("pipeline: scan input: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("pipeline: flush output: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("pipeline: close output: %w", err)
	}

	return os.Remove(scratch)
}

// writeRecord emits r the way the source's stream operator does: the
// canonical ASCII text if the line parsed as a command, otherwise the
// original line verbatim (so comments, blank lines, and anything the
// parser didn't recognize pass through unchanged).
func writeRecord(w *bufio.Writer, r *gcode.Record) error {
	text := r.OriginalCommand()
	if r.IsParsed() {
		text = r.GetASCII()
	}
	_, err := w.WriteString(text + "\n")
	return err
}

func writeLine(w *bufio.Writer, line string) error {
	_, err := w.WriteString(line + "\n")
	return err
}

func openRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: open %s: %w", path, err)
	}
	return f, nil
}

// parseFloatOrZero parses s as a float, returning 0 on failure the way the
// source's stod-on-a-validated-token call never fails in practice.
func parseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// formatFloat mirrors C++'s to_string(double) precision (6 fractional
// digits) used throughout the source's preprocessors when writing a
// recomputed coordinate back into a parameter slot.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
