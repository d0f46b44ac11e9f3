package main

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testSettingsPath = "/config/cpypm/settings.toml"

// A helper filesystem for tests to simulate filesystem errors.
type errorFs struct {
	afero.Fs
}

// A helper function for tests to simulate file creation failure.
func (e errorFs) Create(name string) (afero.File, error) {
	return nil, errors.New("simulated create failure")
}

// A helper function for tests to simulate file opening failure.
func (e errorFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return nil, errors.New("simulated open failure")
}

// A helper filesystem walker for tests to simulate filesystem walk errors.
type errorWalker struct{}

// A helper function for tests to simulate filesystem walk failure.
func (errorWalker) WalkDir(path string, fn fs.WalkDirFunc) error {
	return fn(path, nil, errors.New("simulated walk failure"))
}

// A helper function for tests to create a program on the given filesystem.
func newTestProgram(fs afero.Fs, stdout io.Writer) *Program {
	if stdout == nil {
		stdout = io.Discard
	}

	prog := NewProgram(fs, stdout, io.Discard, nil, nil)
	prog.settingsPath = testSettingsPath

	return prog
}

// A helper function for tests to create a project with a .cpypmconfig file.
func writeTestProject(t *testing.T, fs afero.Fs, root string, location string, targets []string, files map[string]string) string {
	t.Helper()

	require.NoError(t, fs.MkdirAll(root, 0o755))

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	cfg := ProjectConfig{
		Name:    "Test",
		Root:    root,
		Targets: targets,
	}
	cfg.SetLocation(location)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	configPath := filepath.Join(root, configFileName)
	require.NoError(t, afero.WriteFile(fs, configPath, data, 0o644))

	return configPath
}

// A helper function for tests to read back a project's .cpypmconfig file.
func readTestProject(t *testing.T, fs afero.Fs, configPath string) *ProjectConfig {
	t.Helper()

	cfg, err := loadProjectConfig(fs, configPath)
	require.NoError(t, err)

	return cfg
}

// A helper function for tests to read a file's content as a string.
func readTestFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	return string(data)
}
