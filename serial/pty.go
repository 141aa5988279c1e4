package serial

import (
	"fmt"
	"os"

	goserial "github.com/daedaluz/goserial"
)

// PTYPair is a master/slave pseudoterminal pair standing in for a real
// serial port: host software opens the slave side, and the Translator reads
// and writes the master side while it relays to the real printer link.
type PTYPair struct {
	Master *goserial.Port
	Slave  *goserial.Port
	// SlavePath is the underlying /dev/pts/N device the slave side refers
	// to, suitable as the symlink target for a stable /dev/ttyACM<n> alias.
	SlavePath string
}

// OpenPTYPair allocates a pseudoterminal and configures the slave side at
// 115,200 baud 8N1 raw mode, matching the framing a real printer connection
// would use.
func OpenPTYPair() (*PTYPair, error) {
	termios := &goserial.Termios{}
	termios.MakeRaw()
	termios.SetSpeed(goserial.B115200)
	termios.Cflag |= goserial.CREAD | goserial.CLOCAL

	master, slave, err := goserial.OpenPTY(termios, nil)
	if err != nil {
		return nil, fmt.Errorf("serial: open pty: %w", err)
	}

	path, err := ptyPath(slave)
	if err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("serial: resolve pty path: %w", err)
	}

	return &PTYPair{Master: master, Slave: slave, SlavePath: path}, nil
}

// Close releases both ends of the pair.
func (p *PTYPair) Close() {
	p.Slave.Close()
	p.Master.Close()
}

// ptyPath resolves the device node path backing an open port by reading
// its /proc/self/fd symlink, since goserial does not retain the name a
// port was opened (or, for a PTY peer, allocated) with.
func ptyPath(port *goserial.Port) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/self/fd/%d", port.Fd()))
}
