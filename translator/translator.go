// Package translator exposes a printer connection on a virtual serial
// port, symlinked to a stable /dev/ttyACM<n> device node, so ordinary
// slicer/host software can talk to it as if it were the printer itself.
// It rewrites line numbers in ok/skip/Resend responses to account for the
// firmware's 16-bit wraparound.
package translator

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/printcraft/m3dhost/gcode"
)

// printerLink is the subset of serial framing a Translator proxies
// requests to and responses from.
type printerLink interface {
	SendASCII(data string) error
	ReceiveASCII() (string, error)
}

// virtualPort is the host-facing side of the translation: a PTY master (or
// anything that looks like one) the translator reads client requests from
// and writes rewritten responses to.
type virtualPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Translator proxies between a client attached to a virtual serial port
// and a real printer connection, rewriting line numbers for wraparound.
type Translator struct {
	printer printerLink
	virtual virtualPort

	record      *gcode.Record
	wrapCounter uint64
}

// New builds a Translator over an already-configured printer link and
// virtual port.
func New(printer printerLink, virtual virtualPort) *Translator {
	return &Translator{printer: printer, virtual: virtual, record: gcode.New()}
}

// Run proxies requests and responses until the virtual port or printer
// link returns a permanent error, polling both non-blockingly the way the
// teacher protocol's translatorMode loop does.
func (t *Translator) Run() error {
	buf := make([]byte, 4096)
	for {
		if n, err := t.virtual.Read(buf); err == nil && n > 0 {
			if err := t.handleClientRequest(string(buf[:n])); err != nil {
				return fmt.Errorf("translator: client request: %w", err)
			}
		}

		resp, err := t.printer.ReceiveASCII()
		if err != nil {
			return fmt.Errorf("translator: printer response: %w", err)
		}
		if resp != "" {
			if err := t.handlePrinterResponse(resp); err != nil {
				return fmt.Errorf("translator: printer response: %w", err)
			}
		}

		time.Sleep(200 * time.Microsecond)
	}
}

func (t *Translator) handleClientRequest(request string) error {
	if request == "M110\n" || request == "M21\n" {
		_, err := t.virtual.Write([]byte("ok\n"))
		return err
	}

	if t.record.Parse(request) && t.record.GetValue(gcode.ParamN) == "0" && t.record.GetValue(gcode.ParamM) == "110" {
		t.wrapCounter = 0
	}

	return t.printer.SendASCII(request)
}

func (t *Translator) handlePrinterResponse(response string) error {
	rewritten := response

	switch {
	case isOKWithLineNumber(response):
		n, err := strconv.ParseUint(strings.TrimSpace(response[3:]), 10, 64)
		if err != nil {
			return err
		}
		rewritten = t.rewriteLineNumber("ok", n)
	case isSkipWithLineNumber(response):
		n, err := strconv.ParseUint(strings.TrimSpace(response[5:]), 10, 64)
		if err != nil {
			return err
		}
		rewritten = t.rewriteLineNumber("ok", n)
	case isResend(response):
		n, err := strconv.ParseUint(strings.TrimSpace(response[7:]), 10, 64)
		if err != nil {
			return err
		}
		rewritten = fmt.Sprintf("Resend:%d\n", n+t.wrapCounter*0x10000)
	}

	_, err := t.virtual.Write([]byte(rewritten))
	return err
}

// rewriteLineNumber folds the wrap counter into a 16-bit line number and
// bumps the counter when the firmware's counter has just rolled over.
func (t *Translator) rewriteLineNumber(prefix string, lineNumber uint64) string {
	rewritten := fmt.Sprintf("%s %d\n", prefix, lineNumber+t.wrapCounter*0x10000)
	if lineNumber == 0xFFFF {
		t.wrapCounter++
	}
	return rewritten
}

func isOKWithLineNumber(s string) bool {
	return len(s) >= 4 && s[:2] == "ok" && s[3] >= '0' && s[3] <= '9'
}

func isSkipWithLineNumber(s string) bool {
	return len(s) >= 6 && s[:4] == "skip"
}

func isResend(s string) bool {
	return len(s) >= 8 && s[:6] == "Resend"
}

// StableDeviceName returns the lowest-numbered /dev/ttyACM<n> path not
// already present on disk, matching the teacher protocol's linear scan for
// a free virtual serial device name.
func StableDeviceName() (string, error) {
	for i := 0; i < 1<<16; i++ {
		path := fmt.Sprintf("/dev/ttyACM%d", i)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("translator: no free ttyACM device name")
}

// LinkStableDevice symlinks devicePath (as returned by StableDeviceName) to
// slavePath, the real pseudoterminal device node backing a PTY pair, so
// slicer software sees an ordinary-looking /dev/ttyACM<n> printer.
func LinkStableDevice(devicePath, slavePath string) error {
	if err := os.Symlink(slavePath, devicePath); err != nil {
		return fmt.Errorf("translator: symlink %s -> %s: %w", devicePath, slavePath, err)
	}
	return nil
}
