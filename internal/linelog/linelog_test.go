package linelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	f := NewFile(path)
	f.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	}

	f.Append("first")
	f.Append("second")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:30:00Z first\n2024-03-01T12:30:00Z second\n", string(data))
}

func TestFileKeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	NewFile(path).Append("new")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "old\n"))
	assert.True(t, strings.HasSuffix(string(data), " new\n"))
}

func TestFileSwallowsWriteErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "x.log")
	assert.NotPanics(t, func() {
		NewFile(path).Append("lost")
	})
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpen(t *testing.T) {
	assert.IsType(t, Nop{}, Open(false, "x.log"))
	assert.IsType(t, Nop{}, Open(true, ""))

	a := Open(true, "x.log")
	f, ok := a.(*File)
	require.True(t, ok)
	assert.Equal(t, "x.log", f.path)
}

func TestMemory(t *testing.T) {
	var m Memory
	m.Append("a")
	m.Append("b")

	lines := m.Lines()
	assert.Equal(t, []string{"a", "b"}, lines)

	lines[0] = "mutated"
	assert.Equal(t, "a", m.Lines()[0])
}
