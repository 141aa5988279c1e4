// Package applog provides a process-wide debug logger that is silent
// unless explicitly enabled, so the toolchain stays quiet during normal
// use but can be made verbose without recompiling.
package applog

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// Logger is the shared debug logger. It discards everything unless
// M3DHOST_DEBUG is set in the environment at process start, in which case
// it writes timestamped, source-annotated lines to a fixed temp-dir file.
var Logger *log.Logger

func init() {
	if os.Getenv("M3DHOST_DEBUG") == "" {
		Logger = log.New(io.Discard, "", 0)
		return
	}

	logPath := filepath.Join(os.TempDir(), "m3dhost-debug.log")
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600) // #nosec G304 -- fixed filename in temp dir
	if err != nil {
		Logger = log.New(os.Stderr, "M3DHOST: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		return
	}
	Logger = log.New(f, "M3DHOST: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
}
