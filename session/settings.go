package session

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/printcraft/m3dhost/pipeline"
)

// SettingsPath is the fixed filesystem location printer settings persist
// to, owner-writable and world-readable.
const SettingsPath = "/usr/share/m3dhost/settings"

// settingsFields lists the "Key: value" lines SaveSettings writes and
// LoadSettings parses, in the order the teacher protocol wrote them.
var settingsFields = []string{
	"Back Right Offset", "Back Left Offset", "Front Left Offset", "Front Right Offset",
	"Bed Height Offset", "Backlash X", "Backlash Y", "Backlash Speed",
	"Back Right Orientation", "Back Left Orientation", "Front Left Orientation", "Front Right Orientation",
	"Filament Location", "Filament Type", "Filament Color", "Filament Temperature",
}

// SaveSettings writes the session's printer settings to SettingsPath in a
// simple "Key: value" format, creating the containing directory if
// necessary and leaving the file owner-writable and world-readable.
func (s *Session) SaveSettings() error {
	dir := settingsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("session: create settings directory: %w", err)
	}

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
	fmt.Fprintf(&b, "Filament Color: %d\n", s.FilamentColorRaw)
	fmt.Fprintf(&b, "Filament Temperature: %d", s.FilamentTemperature)

	if err := os.WriteFile(SettingsPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("session: write settings: %w", err)
	}
	return nil
}

// LoadSettings reads SettingsPath and merges each recognized "Key: value"
// line into the session, leaving fields absent from the file untouched.
func (s *Session) LoadSettings() error {
	f, err := os.Open(SettingsPath)
	if err != nil {
		return fmt.Errorf("session: open settings: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if err := s.applySetting(key, value); err != nil {
			return fmt.Errorf("session: parse settings line %q: %w", line, err)
		}
	}
	return scanner.Err()
}

func (s *Session) applySetting(key, value string) error {
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
		s.FilamentLocation = FilamentLocation(v)
		return err
	case "Filament Type":
		v, err := parseInt()
		s.FilamentType = filamentTypeFromInt(v)
		return err
	case "Filament Color":
		v, err := parseInt()
		s.FilamentColorRaw = v
		return err
	case "Filament Temperature":
		v, err := parseInt()
		s.FilamentTemperature = v
		return err
	}
	return nil
}

func settingsDir() string {
	return "/usr/share/m3dhost"
}

func filamentTypeFromInt(v int) pipeline.FilamentType {
	return pipeline.FilamentType(v)
}
