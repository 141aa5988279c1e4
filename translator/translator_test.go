package translator_test

import (
	"errors"
	"testing"

	"github.com/printcraft/m3dhost/translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStop = errors.New("stop")

type scriptedPrinter struct {
	sent      []string
	responses []string
}

func (p *scriptedPrinter) SendASCII(data string) error {
	p.sent = append(p.sent, data)
	return nil
}

func (p *scriptedPrinter) ReceiveASCII() (string, error) {
	if len(p.responses) == 0 {
		return "", errStop
	}
	r := p.responses[0]
	p.responses = p.responses[1:]
	return r, nil
}

type scriptedVirtualPort struct {
	reads   []string
	written []string
}

func (v *scriptedVirtualPort) Read(p []byte) (int, error) {
	if len(v.reads) == 0 {
		return 0, nil
	}
	r := v.reads[0]
	v.reads = v.reads[1:]
	n := copy(p, r)
	return n, nil
}

func (v *scriptedVirtualPort) Write(p []byte) (int, error) {
	v.written = append(v.written, string(p))
	return len(p), nil
}

func TestHandleClientRequest_RepliesLocallyToM110AndM21(t *testing.T) {
	printer := &scriptedPrinter{responses: []string{errStopResponse()}}
	virtual := &scriptedVirtualPort{reads: []string{"M110\n", "M21\n"}}

	tr := translator.New(printer, virtual)
	err := tr.Run()

	require.ErrorIs(t, err, errStop)
	assert.Empty(t, printer.sent)
	assert.Equal(t, []string{"ok\n", "ok\n"}, virtual.written)
}

func TestHandleClientRequest_ForwardsOtherLinesToPrinter(t *testing.T) {
	printer := &scriptedPrinter{responses: []string{errStopResponse()}}
	virtual := &scriptedVirtualPort{reads: []string{"G1 X1 N5\n"}}

	tr := translator.New(printer, virtual)
	err := tr.Run()

	require.ErrorIs(t, err, errStop)
	assert.Equal(t, []string{"G1 X1 N5\n"}, printer.sent)
}

func TestHandlePrinterResponse_RewritesLineNumberAfterWraparound(t *testing.T) {
	printer := &scriptedPrinter{responses: []string{
		"ok 65535",
		"ok 0",
		errStopResponse(),
	}}
	virtual := &scriptedVirtualPort{}

	tr := translator.New(printer, virtual)
	err := tr.Run()

	require.ErrorIs(t, err, errStop)
	require.Len(t, virtual.written, 2)
	assert.Equal(t, "ok 65535\n", virtual.written[0])
	assert.Equal(t, "ok 65536\n", virtual.written[1])
}

func TestHandlePrinterResponse_RewritesResendLineNumber(t *testing.T) {
	printer := &scriptedPrinter{responses: []string{
		"ok 65535",
		"Resend:0",
		errStopResponse(),
	}}
	virtual := &scriptedVirtualPort{}

	tr := translator.New(printer, virtual)
	err := tr.Run()

	require.ErrorIs(t, err, errStop)
	require.Len(t, virtual.written, 2)
	assert.Equal(t, "Resend:65536\n", virtual.written[1])
}

func TestHandleClientRequest_ResetsWrapCounterOnN0M110(t *testing.T) {
	printer := &scriptedPrinter{responses: []string{
		"ok 65535",
		"ok 0",
		errStopResponse(),
	}}
	virtual := &scriptedVirtualPort{reads: []string{"", "N0 M110\n"}}

	tr := translator.New(printer, virtual)
	err := tr.Run()

	require.ErrorIs(t, err, errStop)
	require.Len(t, printer.sent, 1)
	assert.Equal(t, "N0 M110\n", printer.sent[0])

	require.Len(t, virtual.written, 2)
	assert.Equal(t, "ok 65535\n", virtual.written[0])
	// Without the N0 M110 reset this would read "ok 65536\n".
	assert.Equal(t, "ok 0\n", virtual.written[1])
}

// errStopResponse yields a sentinel the scriptedPrinter never needs to
// parse as a real response; ReceiveASCII returns errStop once the
// response list is exhausted, which the tests use to end Run's loop.
func errStopResponse() string {
	return ""
}
