package pidfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_WriteReadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "hestia.pid")
	f := New(path)

	require.NoError(t, f.Write())
	pid, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, f.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	assert.NoError(t, f.Clear())
}

func TestFile_ReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hestia.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	_, err := New(path).Read()
	assert.Error(t, err)
}
