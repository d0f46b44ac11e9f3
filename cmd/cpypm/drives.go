package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// A CircuitPython board writes this file to its drive on every boot.
const bootOutFile = "boot_out.txt"

// Drive is a candidate sync location.
type Drive struct {
	Path          string
	CircuitPython bool
}

// Drives writes the drives mounted below the configured mount point to
// standard output. Mount points are looked for one and two levels deep,
// covering both /media/<label> and /media/<user>/<label> layouts. Unless all
// is set, only drives of CircuitPython boards are listed.
func (prog *Program) Drives(ctx context.Context, all bool) error {
	settings, err := prog.loadSettings()
	if err != nil {
		return err
	}

	drives, err := prog.findDrives(ctx, settings.MountPoint)
	if err != nil {
		return err
	}

	for _, drive := range drives {
		if !all && !drive.CircuitPython {
			continue
		}
		fmt.Fprintln(prog.stdout, drive.Path)
	}

	return nil
}

func (prog *Program) findDrives(ctx context.Context, mountPoint string) ([]Drive, error) {
	var drives []Drive

	children, err := prog.subdirectories(mountPoint)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			prog.log.Warn().Str("mountPoint", mountPoint).Msg("Drive mount point does not exist")

			return nil, nil
		}

		return nil, fmt.Errorf("failed to list connected drives: %w", err)
	}

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		drives = append(drives, prog.probeDrive(child))

		grandchildren, err := prog.subdirectories(child)
		if err != nil {
			prog.log.Debug().Err(err).Str("path", child).Msg("Skipping unreadable mount point")

			continue
		}

		for _, grandchild := range grandchildren {
			drives = append(drives, prog.probeDrive(grandchild))
		}
	}

	slices.SortFunc(drives, func(a, b Drive) int {
		return strings.Compare(a.Path, b.Path)
	})

	return drives, nil
}

func (prog *Program) probeDrive(path string) Drive {
	ok, _ := afero.Exists(prog.fs, filepath.Join(path, bootOutFile))

	return Drive{Path: path, CircuitPython: ok}
}

func (prog *Program) subdirectories(dir string) ([]string, error) {
	entries, err := afero.ReadDir(prog.fs, dir)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
	}

	return dirs, nil
}
