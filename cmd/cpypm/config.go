package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

const configFileName = ".cpypmconfig"

// ProjectConfig is the content of a project's .cpypmconfig file.
//
// The JSON keys are shared with existing projects and must not change.
type ProjectConfig struct {
	Name         string   `json:"project_name"  yaml:"project_name"`
	Description  string   `json:"description"   yaml:"description"`
	Root         string   `json:"project_root"  yaml:"project_root"`
	SyncLocation *string  `json:"sync_location" yaml:"sync_location"`
	Targets      []string `json:"files_to_sync" yaml:"files_to_sync"`
}

// HasTarget reports whether a relative path is already a sync target.
// Stored targets are compared in their normalized form.
func (cfg *ProjectConfig) HasTarget(target string) bool {
	target = cleanTarget(target)

	return slices.ContainsFunc(cfg.Targets, func(t string) bool {
		return cleanTarget(t) == target
	})
}

// Location returns the sync location, or an empty string if none is set.
func (cfg *ProjectConfig) Location() string {
	if cfg.SyncLocation == nil {
		return ""
	}

	return *cfg.SyncLocation
}

// SetLocation sets the sync location; an empty string unsets it.
func (cfg *ProjectConfig) SetLocation(location string) {
	if location == "" {
		cfg.SyncLocation = nil

		return
	}

	cfg.SyncLocation = &location
}

// resolveConfigPath turns a user supplied project reference into the
// absolute path of a .cpypmconfig file. An empty reference is the working
// directory, a directory reference is expected to contain the file.
func resolveConfigPath(fs afero.Fs, path string) (string, error) {
	if path == "" {
		path = "."
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to obtain absolute path: %w", err)
	}

	info, err := fs.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNoProject, abs)
		}

		return "", fmt.Errorf("failed to stat project: %w", err)
	}

	if info.IsDir() {
		return filepath.Join(abs, configFileName), nil
	}

	return abs, nil
}

func loadProjectConfig(fs afero.Fs, path string) (*ProjectConfig, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoProject, path)
		}

		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return &cfg, nil
}

func saveProjectConfig(fs afero.Fs, path string, cfg *ProjectConfig) error {
	if cfg.Targets == nil {
		cfg.Targets = []string{}
	}

	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode project config: %w", err)
	}

	if err := writeFileAtomic(fs, path, data, baseFilePerms); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}

	return nil
}

// projectRoot returns the directory sync targets are resolved against.
// A stale project_root (the project was moved) falls back to the directory
// holding the .cpypmconfig file.
func (prog *Program) projectRoot(cfg *ProjectConfig, configPath string) string {
	fallback := filepath.Dir(configPath)

	if cfg.Root == "" {
		return fallback
	}

	if ok, err := afero.DirExists(prog.fs, cfg.Root); err != nil || !ok {
		prog.log.Warn().
			Str("projectRoot", cfg.Root).
			Str("fallback", fallback).
			Msg("Project root does not exist, using the config location instead")

		return fallback
	}

	return cfg.Root
}

// openProject resolves and loads a project in one step.
func (prog *Program) openProject(project string) (string, *ProjectConfig, error) {
	configPath, err := resolveConfigPath(prog.fs, project)
	if err != nil {
		return "", nil, err
	}

	cfg, err := loadProjectConfig(prog.fs, configPath)
	if err != nil {
		return "", nil, err
	}

	prog.log.Debug().Str("config", configPath).Str("name", cfg.Name).Msg("Opened project")

	return configPath, cfg, nil
}
