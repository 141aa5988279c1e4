// Package config holds the toolchain's two on-disk configuration surfaces:
// the printer settings file ("Key: value" lines, read with -d/--provided
// when no printer is attached to query) and an optional TOML file of CLI
// flag defaults.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Settings is the provided-settings snapshot read with -d/--provided: the
// same fields a live printer session would otherwise collect by querying
// the printer, supplied instead from a file so the pipeline can run
// without a printer attached.
type Settings struct {
	BackRightOffset, BackLeftOffset, FrontLeftOffset, FrontRightOffset float32
	BedHeightOffset                                                   float32
	BacklashX, BacklashY, BacklashSpeed                                float32
	BackRightOrientation, BackLeftOrientation                         float32
	FrontLeftOrientation, FrontRightOrientation                       float32
	FilamentType, FilamentLocation, FilamentColor, FilamentTemperature int
}

// Default returns the zero-offset, zero-backlash settings a fresh printer
// with no calibration data would report.
func Default() *Settings {
	return &Settings{}
}

// LoadSettings parses a "Key: value" settings file, in the same format
// session.SaveSettings writes, leaving fields absent from the file at
// their zero value.
func LoadSettings(path string) (*Settings, error) {
	f, err := os.Open(path) // #nosec G304 -- path is operator-supplied via CLI flag
	if err != nil {
		return nil, fmt.Errorf("config: open settings: %w", err)
	}
	defer f.Close()

	s := Default()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if err := s.apply(key, value); err != nil {
			return nil, fmt.Errorf("config: parse settings line %q: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read settings: %w", err)
	}
	return s, nil
}

// SaveSettings writes s to path in the "Key: value" format LoadSettings
// understands.
func SaveSettings(path string, s *Settings) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Back Right Offset: %v\n", s.BackRightOffset)
	fmt.Fprintf(&b, "Back Left Offset: %v\n", s.BackLeftOffset)
	fmt.Fprintf(&b, "Front Left Offset: %v\n", s.FrontLeftOffset)
	fmt.Fprintf(&b, "Front Right Offset: %v\n", s.FrontRightOffset)
	fmt.Fprintf(&b, "Bed Height Offset: %v\n", s.BedHeightOffset)
	fmt.Fprintf(&b, "Backlash X: %v\n", s.BacklashX)
	fmt.Fprintf(&b, "Backlash Y: %v\n", s.BacklashY)
	fmt.Fprintf(&b, "Backlash Speed: %v\n", s.BacklashSpeed)
	fmt.Fprintf(&b, "Back Right Orientation: %v\n", s.BackRightOrientation)
	fmt.Fprintf(&b, "Back Left Orientation: %v\n", s.BackLeftOrientation)
	fmt.Fprintf(&b, "Front Left Orientation: %v\n", s.FrontLeftOrientation)
	fmt.Fprintf(&b, "Front Right Orientation: %v\n", s.FrontRightOrientation)
	fmt.Fprintf(&b, "Filament Location: %d\n", s.FilamentLocation)
	fmt.Fprintf(&b, "Filament Type: %d\n", s.FilamentType)
	fmt.Fprintf(&b, "Filament Color: %d\n", s.FilamentColor)
	fmt.Fprintf(&b, "Filament Temperature: %d", s.FilamentTemperature)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("config: write settings: %w", err)
	}
	return nil
}

func (s *Settings) apply(key, value string) error {
	parseFloat := func() (float32, error) {
		f, err := strconv.ParseFloat(value, 32)
		return float32(f), err
	}
	parseInt := func() (int, error) {
		return strconv.Atoi(value)
	}

	switch key {
	case "Back Right Offset":
		v, err := parseFloat()
		s.BackRightOffset = v
		return err
	case "Back Left Offset":
		v, err := parseFloat()
		s.BackLeftOffset = v
		return err
	case "Front Left Offset":
		v, err := parseFloat()
		s.FrontLeftOffset = v
		return err
	case "Front Right Offset":
		v, err := parseFloat()
		s.FrontRightOffset = v
		return err
	case "Bed Height Offset":
		v, err := parseFloat()
		s.BedHeightOffset = v
		return err
	case "Backlash X":
		v, err := parseFloat()
		s.BacklashX = v
		return err
	case "Backlash Y":
		v, err := parseFloat()
		s.BacklashY = v
		return err
	case "Backlash Speed":
		v, err := parseFloat()
		s.BacklashSpeed = v
		return err
	case "Back Right Orientation":
		v, err := parseFloat()
		s.BackRightOrientation = v
		return err
	case "Back Left Orientation":
		v, err := parseFloat()
		s.BackLeftOrientation = v
		return err
	case "Front Left Orientation":
		v, err := parseFloat()
		s.FrontLeftOrientation = v
		return err
	case "Front Right Orientation":
		v, err := parseFloat()
		s.FrontRightOrientation = v
		return err
	case "Filament Location":
		v, err := parseInt()
		s.FilamentLocation = v
		return err
	case "Filament Type":
		v, err := parseInt()
		s.FilamentType = v
		return err
	case "Filament Color":
		v, err := parseInt()
		s.FilamentColor = v
		return err
	case "Filament Temperature":
		v, err := parseInt()
		s.FilamentTemperature = v
		return err
	}
	return nil
}
