// Package executor streams a processed G-code file to a connected printer
// a handful of lines at a time, tracking in-flight requests so it can
// resend on request and report progress as responses arrive.
package executor

import (
	"bufio"
	"fmt"
	"strconv"
	"time"

	"github.com/printcraft/m3dhost/gcode"
)

// windowSize is the maximum number of unacknowledged requests in flight at
// once, matching the fixed small pipeline depth of the streaming loop.
const windowSize = 4

// Requester is the subset of session.Session an Executor drives: framed
// request/response exchange in whatever mode the session is currently in.
type Requester interface {
	SendRequest(line string) error
	ReceiveResponse() (string, error)
}

// Progress reports streaming progress after each acknowledged line.
type Progress struct {
	Sent  uint64
	Total uint64
}

// Run streams every parseable line from r to the printer, resetting the
// firmware's line-number counter with a leading M110, tracking up to
// windowSize unacknowledged commands in a FIFO window, and resending the
// head-of-window command whenever the printer reports a resend.
//
// onProgress, if non-nil, is called after each line is acknowledged.
func Run(requester Requester, r *bufio.Scanner, total uint64, onProgress func(Progress)) error {
	type inflight struct {
		ascii string
	}

	var window []inflight
	var lineNumber uint32 // wraps at 65536, mirroring the firmware's uint16_t line counter
	var sent uint64
	firstSent := false
	done := false

	record := gcode.New()

	sendNext := func() error {
		var line string
		if !firstSent {
			line = "M110"
			firstSent = true
		} else if r.Scan() {
			line = r.Text()
		} else {
			done = true
			return nil
		}

		if !record.Parse(line) {
			return nil
		}
		record.SetValue(gcode.ParamN, strconv.FormatUint(uint64(lineNumber%65536), 10))
		lineNumber++

		ascii := record.GetASCII()
		if err := requester.SendRequest(ascii); err != nil {
			return fmt.Errorf("executor: send: %w", err)
		}
		window = append(window, inflight{ascii: ascii})
		return nil
	}

	for !done || len(window) > 0 {
		if !done && len(window) < windowSize {
			if err := sendNext(); err != nil {
				return err
			}
		}

		resp, err := requester.ReceiveResponse()
		if err != nil {
			return fmt.Errorf("executor: receive: %w", err)
		}
		if resp == "" {
			time.Sleep(500 * time.Microsecond)
			continue
		}

		switch classifyResponse(resp) {
		case responseOK:
			if len(window) == 0 {
				continue
			}
			window = window[1:]
			sent++
			if onProgress != nil {
				onProgress(Progress{Sent: sent, Total: total})
			}
		case responseResend:
			if len(window) == 0 {
				continue
			}
			if err := requester.SendRequest(window[0].ascii); err != nil {
				return fmt.Errorf("executor: resend: %w", err)
			}
		}
	}

	return nil
}

// TotalLines counts the parseable lines in a scanner's remaining input and
// returns count + 1 + count/65536, matching printFile's totalLines
// accounting (one reset up front, plus one per 65536 lines). Run itself
// sends only the leading M110, so for inputs of 65536 or more lines its
// final Progress.Sent stays below this total.
func TotalLines(r *bufio.Scanner) uint64 {
	record := gcode.New()
	var count uint64
	for r.Scan() {
		if record.Parse(r.Text()) {
			count++
		}
	}
	return count + 1 + count/65536
}

type responseKind int

const (
	responseNone responseKind = iota
	responseOK
	responseResend
)

func classifyResponse(resp string) responseKind {
	if len(resp) >= 4 && resp[:2] == "ok" && resp[3] >= '0' && resp[3] <= '9' {
		return responseOK
	}
	if len(resp) >= 6 && resp[:4] == "skip" {
		return responseOK
	}
	if len(resp) >= 8 && resp[:6] == "Resend" {
		return responseResend
	}
	return responseNone
}
