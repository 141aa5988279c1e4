// Package serial owns the exclusive, blocking connection to the printer's
// serial device: configuring the line, and framing requests/responses in
// either bootloader (ASCII) or runtime (binary) mode.
package serial

import (
	"fmt"
	"time"

	goserial "github.com/daedaluz/goserial"
)

// Link is a single exclusively-held serial connection to the printer.
// All I/O is blocking/polling from one goroutine; Link does not
// synchronize concurrent callers, matching the single-threaded cooperative
// model the rest of the toolchain assumes.
type Link struct {
	port *goserial.Port
}

// Open acquires the named device node at 115,200 baud, 8 data bits, no
// parity, one stop bit (8N1), in raw mode with an initial 200ms read
// timeout, matching the fixed current-protocol line configuration.
func Open(device string) (*Link, error) {
	port, err := goserial.Open(device, goserial.NewOptions().SetReadTimeout(200*time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", device, err)
	}

	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("serial: get attrs: %w", err)
	}
	attrs.MakeRaw()
	attrs.SetSpeed(goserial.B115200)
	attrs.Cflag |= goserial.CREAD | goserial.CLOCAL
	if err := port.SetAttr(goserial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial: set attrs: %w", err)
	}

	return &Link{port: port}, nil
}

// Close releases the device node.
func (l *Link) Close() error {
	return l.port.Close()
}

// flush discards any buffered input and output before a new request,
// matching the "clear the slate" semantics of send_ascii/send_binary.
func (l *Link) flush() error {
	return l.port.Flush(goserial.TCIOFLUSH)
}

// write sends data, flushing both queues first and draining the output
// queue afterward so the call doesn't return until bytes are on the wire.
func (l *Link) write(data []byte) error {
	if err := l.flush(); err != nil {
		return fmt.Errorf("serial: flush: %w", err)
	}
	if _, err := l.port.Write(data); err != nil {
		return fmt.Errorf("serial: write: %w", err)
	}
	return l.port.Drain()
}
