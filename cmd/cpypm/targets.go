package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// EditOptions holds the project metadata to change; nil fields are kept.
type EditOptions struct {
	Name         *string
	Description  *string
	SyncLocation *string // An empty string unsets the sync location
}

// AddTargets adds files or directories of the project to its sync targets.
//
// Paths are taken as given if absolute, otherwise relative to the working
// directory. Each must exist and lie within the project root. Paths that
// already are sync targets are skipped with a warning. The project is only
// saved if all paths could be validated.
func (prog *Program) AddTargets(_ context.Context, project string, paths []string) error {
	configPath, cfg, err := prog.openProject(project)
	if err != nil {
		return err
	}

	root := prog.projectRoot(cfg, configPath)

	var added int
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to obtain absolute path: %w", err)
		}

		rel, ok := withinRoot(root, abs)
		if !ok {
			return fmt.Errorf("%w: %s", ErrOutsideProject, abs)
		}

		if _, err := prog.fs.Stat(abs); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrTargetMissing, abs)
			}

			return fmt.Errorf("failed to stat target: %w", err)
		}

		if cfg.HasTarget(rel) {
			prog.log.Warn().Str("target", rel).Msg("Already a sync target")

			continue
		}

		cfg.Targets = append(cfg.Targets, rel)
		added++

		fmt.Fprintln(prog.stdout, rel)
	}

	if added == 0 {
		return nil
	}

	if err := saveProjectConfig(prog.fs, configPath, cfg); err != nil {
		return err
	}

	prog.log.Info().Int("added", added).Int("targets", len(cfg.Targets)).Msg("Updated sync targets")

	return nil
}

// RemoveTargets removes entries from the sync targets of a project.
//
// Paths are matched against the stored relative form; absolute paths are
// made relative to the project root first. Nothing is saved if any path is
// not a sync target.
func (prog *Program) RemoveTargets(_ context.Context, project string, paths []string) error {
	configPath, cfg, err := prog.openProject(project)
	if err != nil {
		return err
	}

	root := prog.projectRoot(cfg, configPath)

	for _, p := range paths {
		target := cleanTarget(p)
		if filepath.IsAbs(p) {
			rel, ok := withinRoot(root, p)
			if !ok {
				return fmt.Errorf("%w: %s", ErrOutsideProject, p)
			}
			target = rel
		}

		idx := slices.IndexFunc(cfg.Targets, func(t string) bool {
			return cleanTarget(t) == target
		})
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrTargetUnknown, target)
		}

		cfg.Targets = slices.Delete(cfg.Targets, idx, idx+1)

		fmt.Fprintln(prog.stdout, target)
	}

	if err := saveProjectConfig(prog.fs, configPath, cfg); err != nil {
		return err
	}

	prog.log.Info().Int("removed", len(paths)).Int("targets", len(cfg.Targets)).Msg("Updated sync targets")

	return nil
}

// Edit changes the metadata of a project.
func (prog *Program) Edit(_ context.Context, project string, opts EditOptions) error {
	configPath, cfg, err := prog.openProject(project)
	if err != nil {
		return err
	}

	if opts.Name != nil {
		cfg.Name = *opts.Name
	}

	if opts.Description != nil {
		cfg.Description = *opts.Description
	}

	if opts.SyncLocation != nil {
		location := *opts.SyncLocation
		if location != "" {
			if location, err = filepath.Abs(location); err != nil {
				return fmt.Errorf("failed to obtain absolute path: %w", err)
			}
		}
		cfg.SetLocation(location)
	}

	if err := saveProjectConfig(prog.fs, configPath, cfg); err != nil {
		return err
	}

	prog.log.Info().Str("config", configPath).Msg("Saved project")

	return nil
}
