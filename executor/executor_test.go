package executor_test

import (
	"bufio"
	"strings"
	"testing"

	"github.com/printcraft/m3dhost/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRequester struct {
	sent      []string
	responses []string
}

func (s *scriptedRequester) SendRequest(line string) error {
	s.sent = append(s.sent, line)
	return nil
}

func (s *scriptedRequester) ReceiveResponse() (string, error) {
	if len(s.responses) == 0 {
		return "", nil
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r, nil
}

func TestTotalLines_CountsParseableLinesPlusResets(t *testing.T) {
	total := executor.TotalLines(bufio.NewScanner(strings.NewReader("G1 X1\nG1 X2\n; comment\nG1 X3\n")))
	assert.Equal(t, uint64(4), total)
}

func TestRun_SendsM110FirstAndAppliesLineNumbers(t *testing.T) {
	req := &scriptedRequester{responses: []string{"ok 0", "ok 1", "ok 2"}}
	scanner := bufio.NewScanner(strings.NewReader("G1 X1\nG1 X2\n"))

	require.NoError(t, executor.Run(req, scanner, 3, nil))

	require.Len(t, req.sent, 3)
	assert.Contains(t, req.sent[0], "M110")
	assert.Contains(t, req.sent[0], "N0")
	assert.Contains(t, req.sent[1], "N1")
	assert.Contains(t, req.sent[2], "N2")
}

func TestRun_ResendsHeadOfWindowOnResendResponse(t *testing.T) {
	req := &scriptedRequester{responses: []string{"Resend:0", "ok 0", "ok 1"}}
	scanner := bufio.NewScanner(strings.NewReader("G1 X1\n"))

	require.NoError(t, executor.Run(req, scanner, 2, nil))

	require.Len(t, req.sent, 3)
	// The resend fires while M110 (the very first request) is still head
	// of window, so it is M110 that gets retransmitted verbatim.
	assert.Equal(t, req.sent[0], req.sent[1])
	assert.Contains(t, req.sent[2], "G1")
}

func TestRun_ReportsProgressOnAcknowledgement(t *testing.T) {
	req := &scriptedRequester{responses: []string{"ok 0"}}
	scanner := bufio.NewScanner(strings.NewReader(""))

	var progress []executor.Progress
	require.NoError(t, executor.Run(req, scanner, 1, func(p executor.Progress) {
		progress = append(progress, p)
	}))

	require.Len(t, progress, 1)
	assert.Equal(t, uint64(1), progress[0].Sent)
}
