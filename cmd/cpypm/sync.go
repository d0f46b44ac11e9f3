package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// Sync copies every sync target of a project onto its sync location.
//
// Targets are processed in their configured order. A file target overwrites
// its destination, a directory target replaces its destination tree
// wholesale. Paths matching the excludes slice (relative to the project
// root) are skipped. The first error aborts the sync. Every copied path is
// printed to standard output. The ctx parameter controls early cancellation.
func (prog *Program) Sync(ctx context.Context, project string, excludes []string) error {
	start := time.Now()

	if err := validateExcludes(excludes); err != nil {
		return err
	}

	configPath, cfg, err := prog.openProject(project)
	if err != nil {
		return err
	}

	location, err := prog.syncLocation(cfg)
	if err != nil {
		return err
	}

	root := prog.projectRoot(cfg, configPath)

	targets, err := cleanTargets(root, cfg.Targets)
	if err != nil {
		return err
	}

	release, err := prog.acquireSyncLock(root)
	if err != nil {
		return err
	}
	defer release()

	prog.log.Info().
		Int("targets", len(targets)).
		Str("projectRoot", root).
		Str("syncLocation", location).
		Msg("Found items to sync")

	var total copyStats
	for _, target := range targets {
		stats, err := prog.syncTarget(ctx, root, location, target, excludes)
		total.add(stats)

		if err != nil {
			return fmt.Errorf("failure during sync: %w", err)
		}
	}

	prog.log.Info().
		Int("files", total.Files).
		Int("dirs", total.Dirs).
		Str("size", humanize.IBytes(uint64(total.Bytes))). //nolint:gosec
		Dur("took", time.Since(start)).
		Msg("Sync complete")

	return nil
}

// syncLocation returns the absolute sync location of a project and checks
// that it is currently mounted.
func (prog *Program) syncLocation(cfg *ProjectConfig) (string, error) {
	location := cfg.Location()
	if location == "" {
		return "", ErrNoSyncLocation
	}

	location, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("failed to obtain absolute path: %w", err)
	}

	info, err := prog.fs.Stat(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSyncLocationMissing, location)
		}

		return "", fmt.Errorf("failed to stat sync location: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrSyncLocationMissing, location)
	}

	return location, nil
}

func (prog *Program) syncTarget(ctx context.Context, root string, location string, target string, excludes []string) (copyStats, error) {
	var stats copyStats

	src := filepath.Join(root, filepath.FromSlash(target))
	dst := filepath.Join(location, filepath.FromSlash(target))

	info, err := prog.fs.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stats, fmt.Errorf("%w: %s", ErrTargetMissing, src)
		}

		return stats, fmt.Errorf("failed to stat target: %w", err)
	}

	if excluded, err := isExcluded(target, info.IsDir(), excludes); err != nil {
		return stats, err
	} else if excluded {
		prog.log.Debug().Str("target", target).Msg("Skipping excluded target")

		return stats, nil
	}

	prog.log.Debug().Str("from", src).Str("to", dst).Msg("Syncing")

	if info.IsDir() {
		if err := prog.fs.RemoveAll(dst); err != nil {
			return stats, fmt.Errorf("failed to clear destination %s: %w", dst, err)
		}
	}

	err = prog.walkTarget(ctx, root, target, excludes, true, func(rel string, abs string, d fs.DirEntry) error {
		entryStats, err := prog.copyEntry(abs, filepath.Join(location, filepath.FromSlash(rel)), d)
		stats.add(entryStats)

		if err != nil {
			return err
		}

		fmt.Fprintln(prog.stdout, rel)

		return nil
	})

	return stats, err
}
