package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	maxRecentProjects = 10

	settingMountPoint      = "unix_drive_mount_point"
	settingDefaultTemplate = "default_template"
)

// Settings are the application wide preferences, independent of any project.
type Settings struct {
	MountPoint      string   `toml:"unix_drive_mount_point"`
	DefaultTemplate string   `toml:"default_template"`
	LastDirOpened   string   `toml:"last_dir_opened"`
	OpenedRecent    []string `toml:"opened_recent"`
}

func defaultSettings() *Settings {
	return &Settings{
		MountPoint:   defaultMountPoint(),
		OpenedRecent: []string{},
	}
}

func defaultMountPoint() string {
	if runtime.GOOS == "darwin" {
		return "/Volumes"
	}

	return "/media"
}

func defaultSettingsPath() string {
	return filepath.Join(xdg.ConfigHome, "cpypm", "settings.toml")
}

// loadSettings reads the settings file. A missing file yields the defaults;
// an undecodable one is reported and replaced by the defaults.
func (prog *Program) loadSettings() (*Settings, error) {
	settings := defaultSettings()

	data, err := afero.ReadFile(prog.fs, prog.settingsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}

		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		prog.log.Warn().Err(err).Str("path", prog.settingsPath).Msg("Settings are corrupt, using defaults")

		return defaultSettings(), nil
	}

	if settings.MountPoint == "" {
		settings.MountPoint = defaultMountPoint()
	}

	return settings, nil
}

func (prog *Program) saveSettings(settings *Settings) error {
	if err := prog.fs.MkdirAll(filepath.Dir(prog.settingsPath), baseFolderPerms); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := writeFileAtomic(prog.fs, prog.settingsPath, data, baseFilePerms); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// addRecentProject moves a .cpypmconfig path to the front of the recent
// projects, dropping the oldest entries beyond the limit.
func (prog *Program) addRecentProject(configPath string) error {
	settings, err := prog.loadSettings()
	if err != nil {
		return err
	}

	settings.LastDirOpened = filepath.Dir(filepath.Dir(configPath))

	recent := slices.DeleteFunc(settings.OpenedRecent, func(p string) bool {
		return p == configPath
	})
	recent = slices.Insert(recent, 0, configPath)

	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	settings.OpenedRecent = recent

	return prog.saveSettings(settings)
}

// Recent writes the recently opened projects to standard output, or clears
// them if clearAll is set. Projects that no longer exist are marked as missing.
func (prog *Program) Recent(_ context.Context, clearAll bool) error {
	settings, err := prog.loadSettings()
	if err != nil {
		return err
	}

	if clearAll {
		settings.OpenedRecent = []string{}
		if err := prog.saveSettings(settings); err != nil {
			return err
		}
		prog.log.Info().Msg("Cleared recent projects")

		return nil
	}

	for _, path := range settings.OpenedRecent {
		if ok, _ := afero.Exists(prog.fs, path); !ok {
			fmt.Fprintf(prog.stdout, "%s (missing)\n", path)

			continue
		}
		fmt.Fprintln(prog.stdout, path)
	}

	return nil
}

// SettingsShow writes the current settings to standard output as TOML.
func (prog *Program) SettingsShow(_ context.Context) error {
	settings, err := prog.loadSettings()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = prog.stdout.Write(data)

	return err //nolint:wrapcheck
}

// SettingsSet changes a single user editable setting.
func (prog *Program) SettingsSet(_ context.Context, key string, value string) error {
	settings, err := prog.loadSettings()
	if err != nil {
		return err
	}

	switch key {
	case settingMountPoint:
		if value == "" {
			value = defaultMountPoint()
		}
		settings.MountPoint = value
	case settingDefaultTemplate:
		if value != "" {
			abs, err := filepath.Abs(value)
			if err != nil {
				return fmt.Errorf("failed to obtain absolute path: %w", err)
			}
			if ok, err := afero.DirExists(prog.fs, abs); err != nil || !ok {
				return fmt.Errorf("template %s is not a directory", abs)
			}
			value = abs
		}
		settings.DefaultTemplate = value
	default:
		return fmt.Errorf("%w: %q (known: %s, %s)", ErrUnknownSetting, key, settingMountPoint, settingDefaultTemplate)
	}

	return prog.saveSettings(settings)
}
