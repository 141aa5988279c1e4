package serial

import (
	"strings"

	"github.com/printcraft/m3dhost/gcode"
)

// IsBootloaderRequest reports whether a record is the "jump to bootloader"
// command (M115 S628), the one command whose binary transmission changes
// what kind of session follows it.
func IsBootloaderRequest(r *gcode.Record) bool {
	return r.GetValue(gcode.ParamM) == "115" && r.GetValue(gcode.ParamS) == "628"
}

// SendBinary writes the record's binary wire encoding. Callers that send an
// M115 S628 must treat the connection as entering bootloader mode and
// reconnect after the printer resets; SendBinary itself only performs the
// write.
func (l *Link) SendBinary(r *gcode.Record) error {
	return l.write(r.GetBinary())
}

// ReceiveBinary waits for a response the same way ReceiveASCII does, but
// reads only up to the first newline and strips it, matching the printer's
// line-terminated acknowledgements in runtime mode.
func (l *Link) ReceiveBinary() (string, error) {
	s, err := l.ReceiveASCII()
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "\r"), nil
}
