package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// A helper filesystem for tests to simulate filesystem errors.
type failingFs struct {
	afero.Fs
	failMkdirAll bool
	failOpen     bool
}

// A helper function for tests to simulate folder creation failure.
func (f *failingFs) MkdirAll(path string, perm os.FileMode) error {
	if f.failMkdirAll {
		return errors.New("simulated mkdirall error")
	}

	return f.Fs.MkdirAll(path, perm) //nolint:wrapcheck
}

// A helper function for tests to simulate file creation failure.
func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.failOpen {
		return nil, errors.New("simulated create error")
	}

	return f.Fs.OpenFile(name, flag, perm) //nolint:wrapcheck
}

// Expectation: The requested project should be produced without errors.
func Test_Tool_createDummyProject_Success(t *testing.T) {
	fs := afero.NewMemMapFs()

	base := "/testroot"
	totalModules := 250
	expectedDepth := 3 // lib/pkg/module

	require.NoError(t, createDummyProject(t.Context(), fs, base, totalModules))

	var moduleCount int
	err := afero.Walk(fs, filepath.Join(base, "lib"), func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)

		if info.Mode().IsRegular() {
			moduleCount++

			require.True(t, strings.HasPrefix(info.Name(), "module_") && strings.HasSuffix(info.Name(), ".py"))

			relPath, relErr := filepath.Rel(base, path)
			require.NoError(t, relErr)

			depth := len(strings.Split(relPath, string(filepath.Separator)))
			require.Equal(t, expectedDepth, depth)
		}

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, totalModules, moduleCount)

	data, err := afero.ReadFile(fs, filepath.Join(base, ".cpypmconfig"))
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, json.Unmarshal(data, &cfg))
	require.Equal(t, map[string]any{
		"project_name":  filepath.Base(base),
		"description":   "",
		"project_root":  base,
		"sync_location": nil,
		"files_to_sync": []any{"code.py", "lib"},
	}, cfg)
}

// Expectation: A context cancellation should be respected.
func Test_Tool_createDummyProject_CtxCancel_Error(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := createDummyProject(ctx, afero.NewMemMapFs(), "/testroot", 1000)
	require.ErrorIs(t, err, context.Canceled)
}

// Expectation: The requested project creation should fail with the correct error.
func Test_Tool_createDummyProject_MkDirAll_Error(t *testing.T) {
	fs := &failingFs{
		Fs:           afero.NewMemMapFs(),
		failMkdirAll: true,
	}

	err := createDummyProject(t.Context(), fs, "/fail", 100000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "mkdirall")
}

// Expectation: The requested project creation should fail with the correct error.
func Test_Tool_createDummyProject_CreateFile_Error(t *testing.T) {
	fs := &failingFs{
		Fs:       afero.NewMemMapFs(),
		failOpen: true,
	}

	err := createDummyProject(t.Context(), fs, "/fail", 100000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "creating file")
}
