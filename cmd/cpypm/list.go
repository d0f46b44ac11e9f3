package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// List writes to standard output every path a sync of the project would copy.
//
// Directories are suffixed with a slash. If sort is true, the entries are
// written in sorted order; otherwise, they are written in walking order,
// target by target. Paths matching the excludes slice are left out. The ctx
// parameter controls early cancellation.
func (prog *Program) List(ctx context.Context, project string, sort bool, excludes []string) error {
	if err := validateExcludes(excludes); err != nil {
		return err
	}

	configPath, cfg, err := prog.openProject(project)
	if err != nil {
		return err
	}

	root := prog.projectRoot(cfg, configPath)

	targets, err := cleanTargets(root, cfg.Targets)
	if err != nil {
		return err
	}

	paths, errs := prog.targetPathStream(ctx, root, targets, excludes, true, sort)

	for path := range paths {
		fmt.Fprintln(prog.stdout, path)
	}

	for err := range errs {
		if err != nil {
			return fmt.Errorf("failure during listing: %w", err)
		}
	}

	return nil
}

// cleanTargets drops blank targets and normalizes the rest. A target that
// does not name a path strictly below root yields [ErrOutsideProject].
func cleanTargets(root string, targets []string) ([]string, error) {
	cleaned := make([]string, 0, len(targets))
	for _, target := range targets {
		if strings.TrimSpace(target) == "" {
			continue
		}

		rel, ok := withinRoot(root, filepath.Join(root, filepath.FromSlash(cleanTarget(target))))
		if !ok {
			return nil, fmt.Errorf("%w: target %q", ErrOutsideProject, target)
		}
		cleaned = append(cleaned, rel)
	}

	return cleaned, nil
}
