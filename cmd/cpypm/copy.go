package main

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// copyStats accumulates what a copy operation has written.
type copyStats struct {
	Files int
	Dirs  int
	Bytes int64
}

func (s *copyStats) add(o copyStats) {
	s.Files += o.Files
	s.Dirs += o.Dirs
	s.Bytes += o.Bytes
}

// copyFile copies a regular file to dst via a temporary file in the
// destination directory. Permission bits and modification time are carried
// over where the destination filesystem allows it.
func (prog *Program) copyFile(src string, dst string, info fs.FileInfo) (int64, error) {
	in, err := prog.fs.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer in.Close()

	dstDir := filepath.Dir(dst)

	out, err := afero.TempFile(prog.fs, dstDir, ".cpypm-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file in %s: %w", dstDir, err)
	}
	defer out.Close()

	tmpPath := out.Name()
	defer func() {
		if tmpPath != "" {
			_ = prog.fs.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(out, in)
	if err != nil {
		return 0, fmt.Errorf("failed to copy content from %s to %s: %w", src, tmpPath, err)
	}

	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temporary file %s: %w", tmpPath, err)
	}

	// FAT formatted boards reject mode changes, so metadata is best effort.
	if err := prog.fs.Chmod(tmpPath, withUserWrite(info.Mode().Perm())); err != nil {
		prog.log.Debug().Err(err).Str("path", dst).Msg("Could not set permissions")
	}

	if err := prog.fs.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		prog.log.Debug().Err(err).Str("path", dst).Msg("Could not set timestamps")
	}

	if err := prog.fs.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("failed to move %s to %s: %w", tmpPath, dst, err)
	}

	tmpPath = ""

	return written, nil
}

// copyEntry copies one walked entry to dst: directories are created,
// regular files are copied and anything else is skipped.
func (prog *Program) copyEntry(src string, dst string, d fs.DirEntry) (copyStats, error) {
	var stats copyStats

	if d.IsDir() {
		if err := prog.fs.MkdirAll(dst, baseFolderPerms); err != nil {
			return stats, fmt.Errorf("failed to create directory %s: %w", dst, err)
		}
		stats.Dirs++

		return stats, nil
	}

	if !d.Type().IsRegular() {
		prog.log.Warn().Str("path", src).Str("type", d.Type().String()).Msg("Skipping irregular file")

		return stats, nil
	}

	info, err := d.Info()
	if err != nil {
		return stats, fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if err := prog.fs.MkdirAll(filepath.Dir(dst), baseFolderPerms); err != nil {
		return stats, fmt.Errorf("failed to create parent directory of %s: %w", dst, err)
	}

	n, err := prog.copyFile(src, dst, info)
	if err != nil {
		return stats, err
	}
	stats.Files++
	stats.Bytes = n

	return stats, nil
}

func withUserWrite(mode fs.FileMode) fs.FileMode {
	return mode | 0o200 //nolint:mnd
}
