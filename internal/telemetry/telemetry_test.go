package telemetry

import (
	"bufio"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturingLogger(t *testing.T) (*Logger, *bufio.Reader) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { w.Close(); r.Close() })
	return New(w, "test"), bufio.NewReader(r)
}

func TestLogger_DebugfSuppressedUnlessDebugEnabled(t *testing.T) {
	l, r := newCapturingLogger(t)

	l.Debugf("hidden %d", 1)
	l.Infof("marker")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "marker", "Debugf before SetDebug(true) must not have written anything")
	assert.Contains(t, line, "[INFO]")

	l.SetDebug(true)
	l.Debugf("now visible")
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "now visible")
	assert.Contains(t, line, "[DEBUG]")
}

func TestLogger_PrefixesEveryLine(t *testing.T) {
	l, r := newCapturingLogger(t)
	l.Warnf("careful")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "test: careful")
	assert.Contains(t, line, "[WARN]")
}

func TestLogger_Progress(t *testing.T) {
	l, r := newCapturingLogger(t)
	l.Progress(2, 5, "working on %s", "file.move")
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "[2/5] working on file.move\n", line)
}
