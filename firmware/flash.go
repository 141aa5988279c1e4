package firmware

import (
	"errors"
	"fmt"
)

const (
	chipPageSize      = 0x80
	chipNumberOfPages = 0x80
	chipTotalMemory   = chipNumberOfPages * chipPageSize * 2
)

// transport is the minimal bootloader wire interface Flash and ReadEEPROM
// need: single-shot request/response exchanges over an already-configured
// serial link.
type transport interface {
	SendASCII(data string) error
	ReceiveASCII() (string, error)
}

var (
	// ErrNotAcknowledged is returned when the bootloader's response to a
	// request isn't the single carriage return it acknowledges with.
	ErrNotAcknowledged = errors.New("firmware: request not acknowledged")
	// ErrImageTooLarge is returned when a ROM image does not fit the chip.
	ErrImageTooLarge = errors.New("firmware: rom image exceeds chip memory")
	// ErrCRCMismatch is returned when the chip's CRC-32 of its freshly
	// flashed memory does not match the CRC-32 of the image that was sent.
	ErrCRCMismatch = errors.New("firmware: chip crc does not match image crc")
)

func expectAck(t transport) error {
	resp, err := t.ReceiveASCII()
	if err != nil {
		return err
	}
	if resp != "\r" {
		return ErrNotAcknowledged
	}
	return nil
}

func sendAddressZero(t transport) error {
	if err := t.SendASCII("A"); err != nil {
		return err
	}
	if err := t.SendASCII("\x00"); err != nil {
		return err
	}
	if err := t.SendASCII("\x00"); err != nil {
		return err
	}
	return expectAck(t)
}

// Flash erases the chip and writes rom (encrypting it first if it is not
// already encrypted), then verifies the write by comparing the chip's
// reported CRC-32 against the image's own CRC-32, and finally records the
// firmware version and CRC into EEPROM.
func Flash(t transport, rom []byte, version uint32) error {
	prepared := PrepareForFlash(rom)
	if len(prepared) > chipTotalMemory {
		return ErrImageTooLarge
	}

	if err := t.SendASCII("E"); err != nil {
		return err
	}
	var resp string
	for {
		r, err := t.ReceiveASCII()
		if err != nil {
			return err
		}
		if r != "" {
			resp = r
			break
		}
	}
	if resp != "\r" {
		return ErrNotAcknowledged
	}

	if err := sendAddressZero(t); err != nil {
		return fmt.Errorf("firmware: address chip: %w", err)
	}

	pagesToWrite := len(prepared) / 2 / chipPageSize
	if len(prepared)/2%chipPageSize != 0 {
		pagesToWrite++
	}

	for page := 0; page < pagesToWrite; page++ {
		if err := t.SendASCII("B"); err != nil {
			return err
		}
		if err := t.SendASCII(string(byte(chipPageSize * 2 >> 8))); err != nil {
			return err
		}
		if err := t.SendASCII(string([]byte{byte(chipPageSize * 2 & 0xFF)})); err != nil {
			return err
		}

		for j := 0; j < chipPageSize*2; j++ {
			position := j + chipPageSize*page*2
			var b byte
			if position < len(prepared) {
				b = prepared[pairIndex(position)]
			} else {
				b = romEncryptionTable[0xFF]
			}
			if err := t.SendASCII(string([]byte{b})); err != nil {
				return err
			}
		}

		if err := expectAck(t); err != nil {
			return fmt.Errorf("firmware: write page %d: %w", page, err)
		}
	}

	if err := sendAddressZero(t); err != nil {
		return fmt.Errorf("firmware: re-address chip: %w", err)
	}

	eeprom, err := ReadEEPROM(t)
	if err != nil {
		return fmt.Errorf("firmware: read eeprom: %w", err)
	}

	if err := requestChipCRC(t); err != nil {
		return err
	}
	chipCRCBytes, err := t.ReceiveASCII()
	if err != nil {
		return err
	}
	chipCRC := beUint32([]byte(chipCRCBytes))

	// Gated on the 0x2E6 control byte alone, not on any CRC comparison.
	if eeprom.raw[0x2E6] == 0 {
		if err := zeroEeprom(t, 0x08, 0x09, 0x0A, 0x0B); err != nil {
			return err
		}
	}

	decrypted := DecryptROM(prepared, chipTotalMemory)
	romCRC := CRC32(decrypted)
	if chipCRC != swap32(romCRC) {
		return ErrCRCMismatch
	}

	if err := zeroEeprom(t, 0x2D6, 0x2D7, 0x2D8, 0x2D9, 0x2DA, 0x2DB, 0x2DC, 0x2DD,
		0x2DE, 0x2DF, 0x2E0, 0x2E1, 0x2E2, 0x2E3, 0x2E4, 0x2E5); err != nil {
		return err
	}

	for i := 0; i < 4; i++ {
		if err := writeEepromByte(t, uint16(i), byte(version>>(8*uint(i)))); err != nil {
			return fmt.Errorf("firmware: write version: %w", err)
		}
	}
	for i := 0; i < 4; i++ {
		if err := writeEepromByte(t, uint16(i+4), byte(romCRC>>(8*uint(i)))); err != nil {
			return fmt.Errorf("firmware: write crc: %w", err)
		}
	}

	return nil
}

func requestChipCRC(t transport) error {
	if err := t.SendASCII("C"); err != nil {
		return err
	}
	return t.SendASCII("A")
}

func zeroEeprom(t transport, addresses ...uint16) error {
	for _, addr := range addresses {
		if err := writeEepromByte(t, addr, 0); err != nil {
			return fmt.Errorf("firmware: zero eeprom 0x%x: %w", addr, err)
		}
	}
	return nil
}

func beUint32(b []byte) uint32 {
	var v uint32
	for i := 0; i < 4 && i < len(b); i++ {
		v = v<<8 + uint32(b[i])
	}
	return v
}

func swap32(v uint32) uint32 {
	return v<<24 | (v<<8)&0x00FF0000 | (v>>8)&0x0000FF00 | v>>24
}
