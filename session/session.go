// Package session owns the printer connection's mode state machine: which
// of bootloader or runtime protocol is in effect, and the calibration and
// information-collection flags that ride along with a connected printer.
package session

import (
	"fmt"

	"github.com/printcraft/m3dhost/gcode"
	"github.com/printcraft/m3dhost/pipeline"
)

// FilamentLocation identifies where the printer last reported its loaded
// filament spool living.
type FilamentLocation int

const (
	NoLocation FilamentLocation = iota
	Internal
	External
)

// Link is the subset of serial.Link a Session drives: ASCII/binary framing
// plus an explicit close/reconnect, kept abstract so a Session can be
// exercised against a fake in tests.
type Link interface {
	SendASCII(data string) error
	ReceiveASCII() (string, error)
	SendBinary(r *gcode.Record) error
	ReceiveBinary() (string, error)
	Close() error
}

// Reconnector opens a fresh link to the same device, used after a mode
// transition or bootloader entry/exit causes the printer to reset.
type Reconnector func() (Link, error)

// Session is a single printer connection plus everything learned about it:
// firmware identity, bed calibration, backlash tuning, and filament state.
type Session struct {
	link    Link
	connect Reconnector

	BootloaderMode bool

	FirmwareVersion string
	SerialNumber    string

	BackRightOffset  float32
	BackLeftOffset   float32
	FrontLeftOffset  float32
	FrontRightOffset float32
	BedHeightOffset  float32

	BacklashX     float32
	BacklashY     float32
	BacklashSpeed float32

	BackRightOrientation  float32
	BackLeftOrientation   float32
	FrontLeftOrientation  float32
	FrontRightOrientation float32
	ValidBedOrientation   bool

	ValidZ bool
	Status uint8

	FilamentLocation    FilamentLocation
	FilamentType        pipeline.FilamentType
	FilamentColorRaw    int
	FilamentTemperature int
}

// New wraps an already-open link. The session starts in runtime mode;
// callers that know the printer is in bootloader mode should set
// BootloaderMode directly before issuing requests.
func New(l Link, reconnect Reconnector) *Session {
	return &Session{link: l, connect: reconnect}
}

// Close releases the underlying serial connection.
func (s *Session) Close() error {
	return s.link.Close()
}

// SendRequest routes a request through ASCII or binary framing depending
// on the session's current mode, mirroring the teacher protocol's
// sendRequest dispatch.
func (s *Session) SendRequest(line string) error {
	if s.BootloaderMode {
		return s.link.SendASCII(line)
	}
	r := gcode.New()
	r.Parse(line)
	return s.link.SendBinary(r)
}

// ReceiveResponse reads a response using the framing that matches the
// session's current mode.
func (s *Session) ReceiveResponse() (string, error) {
	if s.BootloaderMode {
		return s.link.ReceiveASCII()
	}
	return s.link.ReceiveBinary()
}

// reconnect replaces the session's link after a mode transition, waiting
// for the printer to drop and reappear on the device node.
func (s *Session) reconnect() error {
	if s.connect == nil {
		return fmt.Errorf("session: no reconnector configured")
	}
	l, err := s.connect()
	if err != nil {
		return fmt.Errorf("session: reconnect: %w", err)
	}
	s.link = l
	return nil
}
