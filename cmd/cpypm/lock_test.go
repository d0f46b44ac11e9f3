package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Expectation: The lock file should hold the process ID and be removed on release.
func Test_Program_AcquireSyncLock_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/proj", 0o755))

	prog := newTestProgram(fs, nil)

	release, err := prog.acquireSyncLock("/proj")
	require.NoError(t, err)

	content := readTestFile(t, fs, filepath.Join("/proj", lockFileName))
	require.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(content))

	release()

	_, err = fs.Stat(filepath.Join("/proj", lockFileName))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// Expectation: A second lock should be refused until the first one is released.
func Test_Program_AcquireSyncLock_Held_Error(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/proj", 0o755))

	prog := newTestProgram(fs, nil)

	release, err := prog.acquireSyncLock("/proj")
	require.NoError(t, err)

	_, err = prog.acquireSyncLock("/proj")
	require.ErrorIs(t, err, ErrSyncInProgress)

	release()

	release, err = prog.acquireSyncLock("/proj")
	require.NoError(t, err)
	release()
}

// Expectation: A failing lock file creation should raise an error other than the in-progress one.
func Test_Program_AcquireSyncLock_Open_Error(t *testing.T) {
	prog := newTestProgram(errorFs{Fs: afero.NewMemMapFs()}, nil)

	_, err := prog.acquireSyncLock("/proj")
	require.ErrorContains(t, err, "simulated open failure")
	require.NotErrorIs(t, err, ErrSyncInProgress)
}
