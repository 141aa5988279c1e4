package firmware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTransport replays a fixed sequence of responses, one per
// ReceiveASCII call, and records everything sent to it.
type scriptedTransport struct {
	responses []string
	sent      []string
}

func (s *scriptedTransport) SendASCII(data string) error {
	s.sent = append(s.sent, data)
	return nil
}

func (s *scriptedTransport) ReceiveASCII() (string, error) {
	if len(s.responses) == 0 {
		return "", nil
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

func TestWriteEepromByte_SendsAddressLengthAndPayload(t *testing.T) {
	tr := &scriptedTransport{responses: []string{"\r"}}
	require.NoError(t, writeEepromByte(tr, 0x2AB, 0x03))

	assert.Equal(t, []string{"U", "\x02", "\xab", "\x00", "\x01", "\x03"}, tr.sent)
}

func TestWriteEepromByte_ReturnsErrorWhenNotAcknowledged(t *testing.T) {
	tr := &scriptedTransport{responses: []string{"?"}}
	assert.ErrorIs(t, writeEepromByte(tr, 0, 0), ErrNotAcknowledged)
}

func TestReadEEPROM_FailsOnTruncatedResponse(t *testing.T) {
	tr := &scriptedTransport{responses: []string{"no terminator"}}
	_, err := ReadEEPROM(tr)
	assert.ErrorIs(t, err, ErrEEPROMReadFailed)
}

func TestReadEEPROM_AcceptsCarriageReturnTerminated(t *testing.T) {
	body := strings.Repeat("x", 0x2FF) + "\r"
	tr := &scriptedTransport{responses: []string{body}}
	snap, err := ReadEEPROM(tr)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(snap.raw), "\r"))
}
