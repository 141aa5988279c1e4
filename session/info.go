package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/printcraft/m3dhost/pipeline"
)

// sendUntilOK repeats a request until the printer acknowledges it with an
// "ok"-prefixed response, silently discarding temperature-report lines
// ("T:...") the firmware may interleave while it's busy.
func (s *Session) sendUntilOK(command string) error {
	for {
		if err := s.SendRequest(command); err != nil {
			return err
		}
		var resp string
		for resp == "" {
			r, err := s.ReceiveResponse()
			if err != nil {
				return err
			}
			if strings.HasPrefix(r, "T:") {
				continue
			}
			resp = r
		}
		if strings.HasPrefix(resp, "ok") {
			return nil
		}
	}
}

// CalibrateZ runs the fixed heater-off, heat-soak, probe sequence the
// firmware uses to home its Z axis, then marks the result valid.
func (s *Session) CalibrateZ() error {
	steps := []string{
		"M104 S0",
		"G4 S10",
		"G91",
		"G0 Y20 Z2 F150",
		"M109 S150",
		"M104 S0",
		"M106 S0",
		"G30",
		"M577 F0",
	}
	for _, step := range steps {
		if err := s.sendUntilOK(step); err != nil {
			return fmt.Errorf("session: calibrate z: %w", err)
		}
	}
	s.ValidZ = true
	return nil
}

// CalibrateBedOrientation marks the session's bed orientation as valid.
// The firmware performs the actual corner-height probing on its own; the
// host side of calibration is just acknowledging the result.
func (s *Session) CalibrateBedOrientation() {
	s.ValidBedOrientation = true
}

const (
	eepromBacklashX              = 0
	eepromBacklashY              = 1
	eepromBackRightOrientation   = 2
	eepromBackLeftOrientation    = 3
	eepromFrontLeftOrientation   = 4
	eepromFrontRightOrientation  = 5
	eepromFilamentColor          = 6
	eepromFilamentType           = 7
	eepromFilamentTemperature    = 8
	eepromBackLeftOffset         = 16
	eepromBackRightOffset        = 17
	eepromFrontRightOffset       = 18
	eepromFrontLeftOffset        = 19
	eepromBacklashSpeed          = 22
	eepromBedHeightOffset        = 32
)

// queryEepromFloat issues M619 for the given typed EEPROM field and
// reinterprets the returned DT:<u32> token's bit pattern as a float32.
func (s *Session) queryEepromFloat(offset int) (float32, error) {
	if err := s.SendRequest("M619 S" + strconv.Itoa(offset)); err != nil {
		return 0, err
	}
	resp, err := s.ReceiveResponse()
	if err != nil {
		return 0, err
	}
	v, err := parseDT(resp)
	if err != nil {
		return 0, err
	}
	return float32FromBits(v), nil
}

// queryEepromInt issues M619 and returns the DT:<u32> token verbatim as an
// integer, for fields the firmware reports as plain counts rather than
// float bit patterns.
func (s *Session) queryEepromInt(offset int) (uint32, error) {
	if err := s.SendRequest("M619 S" + strconv.Itoa(offset)); err != nil {
		return 0, err
	}
	resp, err := s.ReceiveResponse()
	if err != nil {
		return 0, err
	}
	return parseDT(resp)
}

func parseDT(resp string) (uint32, error) {
	i := strings.Index(resp, "DT:")
	if i < 0 {
		return 0, fmt.Errorf("session: no DT token in response %q", resp)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(resp[i+3:]), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("session: parse DT token: %w", err)
	}
	return uint32(n), nil
}

func float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// CollectInformation queries firmware identity, bed geometry, backlash
// tuning, calibration status, and filament state, populating the session's
// fields from the printer's M115/M619/M117 responses.
func (s *Session) CollectInformation() error {
	if err := s.SendRequest("M115"); err != nil {
		return err
	}
	resp, err := s.ReceiveResponse()
	if err != nil {
		return err
	}
	if err := s.parseFirmwareIdentity(resp); err != nil {
		return err
	}

	var floatErr error
	get := func(offset int) float32 {
		if floatErr != nil {
			return 0
		}
		v, err := s.queryEepromFloat(offset)
		if err != nil {
			floatErr = err
		}
		return v
	}

	s.BackRightOffset = get(eepromBackRightOffset)
	s.BackLeftOffset = get(eepromBackLeftOffset)
	s.FrontLeftOffset = get(eepromFrontLeftOffset)
	s.FrontRightOffset = get(eepromFrontRightOffset)
	s.BedHeightOffset = get(eepromBedHeightOffset)
	s.BacklashX = get(eepromBacklashX)
	s.BacklashY = get(eepromBacklashY)
	s.BacklashSpeed = get(eepromBacklashSpeed)
	if floatErr != nil {
		return floatErr
	}

	if s.BacklashSpeed <= 1 || s.BacklashSpeed >= 5000 {
		if err := s.SendRequest("M618 S22 P1153138688"); err != nil {
			return err
		}
		if _, err := s.ReceiveResponse(); err != nil {
			return err
		}
		s.BacklashSpeed = 1500
	}

	s.BackRightOrientation = get(eepromBackRightOrientation)
	s.BackLeftOrientation = get(eepromBackLeftOrientation)
	s.FrontLeftOrientation = get(eepromFrontLeftOrientation)
	s.FrontRightOrientation = get(eepromFrontRightOrientation)
	if floatErr != nil {
		return floatErr
	}

	s.ValidBedOrientation = (s.BackRightOrientation != 0 || s.BackLeftOrientation != 0 ||
		s.FrontLeftOrientation != 0 || s.FrontRightOrientation != 0) &&
		inRange(s.BackRightOrientation, -3, 3) && inRange(s.BackLeftOrientation, -3, 3) &&
		inRange(s.FrontLeftOrientation, -3, 3) && inRange(s.FrontRightOrientation, -3, 3)

	if err := s.SendRequest("M117"); err != nil {
		return err
	}
	resp, err = s.ReceiveResponse()
	if err != nil {
		return err
	}
	s.ValidZ = strings.Contains(resp, "ZV:1")
	if i := strings.Index(resp, "S:"); i >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(resp[i+2:]))
		if err != nil {
			return fmt.Errorf("session: parse status: %w", err)
		}
		s.Status = uint8(n)
	}

	filamentTypeValue, err := s.queryEepromInt(eepromFilamentType)
	if err != nil {
		return err
	}
	s.FilamentLocation = filamentLocationFromValue(filamentTypeValue)
	s.FilamentType = filamentTypeFromValue(filamentTypeValue)

	colorValue, err := s.queryEepromInt(eepromFilamentColor)
	if err != nil {
		return err
	}
	s.FilamentColorRaw = int(colorValue)

	tempValue, err := s.queryEepromInt(eepromFilamentTemperature)
	if err != nil {
		return err
	}
	s.FilamentTemperature = int(tempValue) + 100

	return nil
}

func (s *Session) parseFirmwareIdentity(resp string) error {
	const versionKey = "FIRMWARE_VERSION:"
	const serialKey = "SERIAL_NUMBER:"

	vi := strings.Index(resp, versionKey)
	si := strings.Index(resp, serialKey)
	if vi < 0 || si < 0 {
		return fmt.Errorf("session: firmware identity not found in %q", resp)
	}
	rest := resp[vi+len(versionKey):]
	if sp := strings.IndexByte(rest, ' '); sp >= 0 {
		s.FirmwareVersion = rest[:sp]
	} else {
		s.FirmwareVersion = rest
	}
	s.SerialNumber = resp[si+len(serialKey):]
	return nil
}

func inRange(v, lo, hi float32) bool {
	return v >= lo && v <= hi
}

func filamentLocationFromValue(v uint32) FilamentLocation {
	switch v & 0xC0 {
	case 0x00:
		return NoLocation
	case 0x40:
		return Internal
	default:
		return External
	}
}

func filamentTypeFromValue(v uint32) pipeline.FilamentType {
	switch v & 0x3F {
	case 0:
		return pipeline.FilamentABS
	case 1:
		return pipeline.FilamentPLA
	case 2:
		return pipeline.FilamentHIPS
	default:
		return pipeline.FilamentOther
	}
}
