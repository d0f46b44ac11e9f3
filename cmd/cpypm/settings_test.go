package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Expectation: A missing settings file should yield the defaults.
func Test_Program_LoadSettings_Defaults_Success(t *testing.T) {
	prog := newTestProgram(afero.NewMemMapFs(), nil)

	settings, err := prog.loadSettings()
	require.NoError(t, err)
	require.Equal(t, defaultMountPoint(), settings.MountPoint)
	require.Empty(t, settings.DefaultTemplate)
	require.Empty(t, settings.OpenedRecent)
}

// Expectation: A corrupt settings file should be replaced by the defaults.
func Test_Program_LoadSettings_Corrupt_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testSettingsPath, []byte("this is = = not toml"), 0o644))

	prog := newTestProgram(fs, nil)

	settings, err := prog.loadSettings()
	require.NoError(t, err)
	require.Equal(t, defaultMountPoint(), settings.MountPoint)
}

// Expectation: Settings should survive a save and load.
func Test_Program_SaveSettings_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	prog := newTestProgram(fs, nil)

	require.NoError(t, prog.saveSettings(&Settings{
		MountPoint:   "/run/media",
		OpenedRecent: []string{"/a/.cpypmconfig"},
	}))

	require.Contains(t, readTestFile(t, fs, testSettingsPath), "unix_drive_mount_point = '/run/media'")

	settings, err := prog.loadSettings()
	require.NoError(t, err)
	require.Equal(t, "/run/media", settings.MountPoint)
	require.Equal(t, []string{"/a/.cpypmconfig"}, settings.OpenedRecent)
}

// Expectation: Recent projects should be deduplicated, most recent first, and capped.
func Test_Program_AddRecentProject_Success(t *testing.T) {
	prog := newTestProgram(afero.NewMemMapFs(), nil)

	for i := range maxRecentProjects + 3 {
		require.NoError(t, prog.addRecentProject(fmt.Sprintf("/p/%02d/.cpypmconfig", i)))
	}
	require.NoError(t, prog.addRecentProject("/p/05/.cpypmconfig"))

	settings, err := prog.loadSettings()
	require.NoError(t, err)
	require.Len(t, settings.OpenedRecent, maxRecentProjects)
	require.Equal(t, "/p/05/.cpypmconfig", settings.OpenedRecent[0])
	require.Equal(t, "/p/12/.cpypmconfig", settings.OpenedRecent[1])
	require.NotContains(t, settings.OpenedRecent, "/p/00/.cpypmconfig")
	require.Equal(t, "/p", settings.LastDirOpened)
}

// Expectation: Recent projects should be listed with missing ones marked.
func Test_Program_Recent_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	configPath := writeTestProject(t, fs, "/proj", "", nil, nil)

	var stdout bytes.Buffer

	prog := newTestProgram(fs, &stdout)
	require.NoError(t, prog.addRecentProject("/gone/.cpypmconfig"))
	require.NoError(t, prog.addRecentProject(configPath))

	require.NoError(t, prog.Recent(t.Context(), false))
	require.Equal(t, "/proj/.cpypmconfig\n/gone/.cpypmconfig (missing)\n", stdout.String())
}

// Expectation: Clearing should empty the recent projects.
func Test_Program_Recent_Clear_Success(t *testing.T) {
	var stdout bytes.Buffer

	prog := newTestProgram(afero.NewMemMapFs(), &stdout)
	require.NoError(t, prog.addRecentProject("/proj/.cpypmconfig"))

	require.NoError(t, prog.Recent(t.Context(), true))
	require.NoError(t, prog.Recent(t.Context(), false))
	require.Empty(t, stdout.String())
}

// Expectation: The settings should be shown as TOML.
func Test_Program_SettingsShow_Success(t *testing.T) {
	var stdout bytes.Buffer

	prog := newTestProgram(afero.NewMemMapFs(), &stdout)
	require.NoError(t, prog.SettingsShow(t.Context()))

	require.Contains(t, stdout.String(), "unix_drive_mount_point = ")
	require.Contains(t, stdout.String(), "default_template = ''")
}

// Expectation: The user editable settings should be changed and empty values restore the defaults.
func Test_Program_SettingsSet_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/templates/basic", 0o755))

	prog := newTestProgram(fs, nil)

	require.NoError(t, prog.SettingsSet(t.Context(), settingMountPoint, "/run/media"))
	require.NoError(t, prog.SettingsSet(t.Context(), settingDefaultTemplate, "/templates/basic"))

	settings, err := prog.loadSettings()
	require.NoError(t, err)
	require.Equal(t, "/run/media", settings.MountPoint)
	require.Equal(t, "/templates/basic", settings.DefaultTemplate)

	require.NoError(t, prog.SettingsSet(t.Context(), settingMountPoint, ""))
	require.NoError(t, prog.SettingsSet(t.Context(), settingDefaultTemplate, ""))

	settings, err = prog.loadSettings()
	require.NoError(t, err)
	require.Equal(t, defaultMountPoint(), settings.MountPoint)
	require.Empty(t, settings.DefaultTemplate)
}

// Expectation: Unknown keys and missing template directories should be refused.
func Test_Program_SettingsSet_Error(t *testing.T) {
	prog := newTestProgram(afero.NewMemMapFs(), nil)

	err := prog.SettingsSet(t.Context(), "last_dir_opened", "/tmp")
	require.ErrorIs(t, err, ErrUnknownSetting)

	err = prog.SettingsSet(t.Context(), settingDefaultTemplate, "/missing")
	require.ErrorContains(t, err, "is not a directory")
}
