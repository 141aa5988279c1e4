package firmware

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// eepromSnapshot holds the offsets of the bootloader's S-request response
// that firmware validation and fan-type election read from.
type eepromSnapshot struct {
	raw []byte
}

// FanType identifies which of the printer's three cooling-fan hardware
// variants (Henglixin, Listener, Shenzhew) is installed, read back from (or
// written into) EEPROM; FanNone marks an unset field.
type FanType byte

const (
	FanHenglixin FanType = 0x01
	FanListener  FanType = 0x02
	FanShenzhew  FanType = 0x03
	FanNone      FanType = 0xFF
)

// extruderCurrentSerials lists EEPROM serial numbers known to need their
// extruder current bumped to 500 on firmware updates.
var extruderCurrentSerials = map[string]bool{
	"BK15033001100": true, "BK15040201050": true, "BK15040301050": true,
	"BK15040602050": true, "BK15040801050": true, "BK15040802100": true,
	"GR15032702100": true, "GR15033101100": true, "GR15040601100": true,
	"GR15040701100": true, "OR15032701100": true, "SL15032601050": true,
}

// ErrEEPROMReadFailed is returned when the bootloader's S-request response
// is truncated (doesn't end with the trailing carriage return).
var ErrEEPROMReadFailed = errors.New("firmware: eeprom read failed")

// ReadEEPROM requests the full EEPROM image from the bootloader.
func ReadEEPROM(t transport) (*eepromSnapshot, error) {
	if err := t.SendASCII("S"); err != nil {
		return nil, err
	}
	resp, err := t.ReceiveASCII()
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(resp, "\r") {
		return nil, ErrEEPROMReadFailed
	}
	return &eepromSnapshot{raw: []byte(resp)}, nil
}

func writeEepromByte(t transport, address uint16, data byte) error {
	return writeEepromBytes(t, address, []byte{data})
}

// writeEepromBytes issues the U-request: a 2-byte big-endian address, a
// 2-byte big-endian length, and the payload, acknowledged by a lone "\r".
func writeEepromBytes(t transport, address uint16, data []byte) error {
	if err := t.SendASCII("U"); err != nil {
		return err
	}
	if err := t.SendASCII(string([]byte{byte(address >> 8)})); err != nil {
		return err
	}
	if err := t.SendASCII(string([]byte{byte(address)})); err != nil {
		return err
	}
	length := uint16(len(data))
	if err := t.SendASCII(string([]byte{byte(length >> 8)})); err != nil {
		return err
	}
	if err := t.SendASCII(string([]byte{byte(length)})); err != nil {
		return err
	}
	for _, b := range data {
		if err := t.SendASCII(string([]byte{b})); err != nil {
			return err
		}
	}
	resp, err := t.ReceiveASCII()
	if err != nil {
		return err
	}
	if resp != "\r" {
		return ErrNotAcknowledged
	}
	return nil
}

// IsFirmwareValid asks the bootloader for its chip CRC and EEPROM, checks
// that the recorded firmware CRC matches and the firmware isn't older than
// the oldest version this host still supports, and opportunistically
// repairs the fan-type/offset/scale and extruder-current EEPROM fields the
// way updateFirmware's predecessor does when they look stale.
func IsFirmwareValid(t transport, minimumVersion uint32) (bool, error) {
	if err := requestChipCRC(t); err != nil {
		return false, err
	}
	chipCRCBytes, err := t.ReceiveASCII()
	if err != nil {
		return false, err
	}
	chipCRC := beUint32([]byte(chipCRCBytes))

	snap, err := ReadEEPROM(t)
	if err != nil {
		return false, err
	}
	raw := snap.raw

	eepromCRC := beUint32(raw[4:8])
	if chipCRC != eepromCRC {
		return false, nil
	}

	var eepromFirmware uint32
	for i := 3; i >= 0; i-- {
		eepromFirmware = eepromFirmware<<8 + uint32(raw[i])
	}
	if eepromFirmware < minimumVersion {
		return false, nil
	}

	eepromSerial := string(raw[0x2EF : 0x2EF+13])

	fan := FanType(raw[0x2AB])
	if fan == 0 || fan == FanNone {
		fan = FanHenglixin
		if n, convErr := strconv.Atoi(eepromSerial[2:8]); convErr == nil && n >= 150602 {
			fan = FanShenzhew
		}

		var offset byte
		var scale float32
		switch fan {
		case FanHenglixin:
			offset, scale = 200, 0.2165354
		case FanListener:
			offset, scale = 145, 0.3333333
		default:
			offset, scale = 82, 0.3843137
		}

		bits := math.Float32bits(scale)
		scaleBytes := []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
		if err := writeEepromBytes(t, 0x2AD, scaleBytes); err != nil {
			return false, err
		}
		if err := writeEepromByte(t, 0x2AC, offset); err != nil {
			return false, err
		}
		if err := writeEepromByte(t, 0x2AB, byte(fan)); err != nil {
			return false, err
		}
	}

	if extruderCurrentSerials[eepromSerial] {
		current := uint16(raw[0x2E8]) + uint16(raw[0x2E9])<<8
		if current != 500 {
			if err := writeEepromByte(t, 0x2E8, byte(500&0xFF)); err != nil {
				return false, err
			}
			if err := writeEepromByte(t, 0x2E9, byte(500>>8)); err != nil {
				return false, err
			}
		}
	}

	return true, nil
}
