package session

import (
	"fmt"

	"github.com/printcraft/m3dhost/gcode"
)

// EnterBootloader sends the binary "jump to bootloader" command and waits
// for the printer to reset and reconnect, matching sendRequestBinary's own
// detection of M115 S628 and its reconnect loop.
func (s *Session) EnterBootloader() error {
	r := gcode.New()
	r.Parse("M115 S628")
	if err := s.link.SendBinary(r); err != nil {
		return fmt.Errorf("session: enter bootloader: %w", err)
	}
	if err := s.reconnect(); err != nil {
		return err
	}
	s.BootloaderMode = true
	return nil
}

// ExitBootloader sends the bootloader's ASCII quit command and waits for
// the printer to reset back into runtime mode.
func (s *Session) ExitBootloader() error {
	if err := s.link.SendASCII("Q"); err != nil {
		return fmt.Errorf("session: exit bootloader: %w", err)
	}
	if err := s.reconnect(); err != nil {
		return err
	}
	s.BootloaderMode = false
	return nil
}
