package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lanrat/extsort"
	"github.com/spf13/afero"
)

// PgzipConfig is the configuration for concurrent gzip operations.
type PgzipConfig struct {
	BlockSize  int // Approximate size of blocks (pgzip operations)
	BlockCount int // Amount of blocks processing in parallel (pgzip operations)
}

// Walker is an interface describing a filesystem walking function.
type Walker interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// AferoWalker is an adapter to turn the [afero.Walk] into a [filepath.WalkDir] signature.
type AferoWalker struct {
	FS afero.Fs
}

// WalkDir is a method that adapts [afero.Walk] into a [filepath.WalkDir] compatible signature.
func (w AferoWalker) WalkDir(root string, fn fs.WalkDirFunc) error {
	return afero.Walk(w.FS, root, func(path string, info fs.FileInfo, err error) error { //nolint:wrapcheck
		var entry fs.DirEntry
		if info != nil {
			entry = fileInfoDirEntry{info}
		}

		return fn(path, entry, err)
	})
}

// OSWalker is a wrapper structure for the native [filepath.WalkDir] function.
type OSWalker struct{}

// WalkDir is a wrapper method for the native [filepath.WalkDir] function.
func (w OSWalker) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

type fileInfoDirEntry struct {
	fs.FileInfo
}

func (fi fileInfoDirEntry) Type() fs.FileMode {
	return fi.Mode().Type()
}

func (fi fileInfoDirEntry) Info() (fs.FileInfo, error) {
	return fi.FileInfo, nil
}

func (fi fileInfoDirEntry) IsDir() bool {
	return fi.Mode().IsDir()
}

func (fi fileInfoDirEntry) Name() string {
	return fi.FileInfo.Name()
}

// targetWalkFunc is called for every path below a sync target. The rel
// parameter is slash-separated and relative to the walked base directory.
type targetWalkFunc func(rel string, abs string, d fs.DirEntry) error

func isExcluded(path string, isDir bool, excludes []string) (bool, error) {
	path = filepath.ToSlash(filepath.Clean(path))

	for _, rawPattern := range excludes {
		pattern := filepath.ToSlash(rawPattern)

		needDirMatch := strings.HasSuffix(pattern, "/")
		pattern = strings.TrimPrefix(strings.TrimSuffix(pattern, "/"), "/")

		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern: %w", err)
		}
		if matched {
			if needDirMatch && !isDir {
				continue
			}

			return true, nil
		}
	}

	return false, nil
}

func validateExcludes(excludes []string) error {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}

	return nil
}

// cleanTarget normalizes a sync target into its stored slash-separated form.
func cleanTarget(target string) string {
	return strings.TrimSuffix(filepath.ToSlash(filepath.Clean(target)), "/")
}

// walkTarget walks one sync target below base. Excluded directories are not
// descended into. A missing target yields [ErrTargetMissing] when strict is
// set and is silently skipped otherwise.
func (prog *Program) walkTarget(ctx context.Context, base string, target string, excludes []string, strict bool, fn targetWalkFunc) error {
	root := filepath.Join(base, filepath.FromSlash(target))

	if _, err := prog.fs.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if strict {
				return fmt.Errorf("%w: %s", ErrTargetMissing, root)
			}

			return nil
		}

		return fmt.Errorf("failed to stat target: %w", err)
	}

	return prog.fsWalker.WalkDir(root, func(path string, d fs.DirEntry, err error) error { //nolint:wrapcheck
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			return fmt.Errorf("failed to walk filesystem: %w", err)
		}

		relPath, err := filepath.Rel(base, path)
		if err != nil {
			return fmt.Errorf("failed to obtain relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		if excluded, err := isExcluded(relPath, d.IsDir(), excludes); err != nil {
			return err
		} else if excluded && d.IsDir() {
			return filepath.SkipDir
		} else if excluded {
			return nil
		}

		return fn(relPath, path, d)
	})
}

// targetPathStream streams every path the given sync targets consist of,
// relative to base, with directories suffixed by a slash.
func (prog *Program) targetPathStream(ctx context.Context, base string, targets []string, excludes []string, strict bool, sort bool) (<-chan string, <-chan error) {
	paths := make(chan string, fsStreamBuffer)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)

		for _, target := range targets {
			if err := prog.walkTarget(ctx, base, target, excludes, strict, func(rel string, _ string, d fs.DirEntry) error {
				if d.IsDir() && !strings.HasSuffix(rel, "/") {
					rel += "/"
				}

				select {
				case paths <- rel:
				case <-ctx.Done():
					return ctx.Err()
				}

				return nil
			}); err != nil {
				errs <- fmt.Errorf("failed to stream from fs: %w", err)

				return
			}
		}
	}()

	if !sort {
		return paths, errs
	}

	return extsortStrings(ctx, paths, errs, prog.extSortConfig)
}

// extsortStrings wraps [extsort.Strings] for internal use.
//
// It merges two possible error sources into a single channel:
//  1. Runtime sorting errors - any errors raised while sorting proceeds.
//  2. extErrs (optional) - errors from non-sorting work such as walking.
//
// Do note that only the first error observed from these sources is sent downstream.
func extsortStrings(ctx context.Context, input <-chan string, extErrs <-chan error, config *extsort.Config) (<-chan string, <-chan error) {
	sorter, sorterOut, sorterErrs := extsort.Strings(input, config)

	if sorter != nil {
		go sorter.Sort(ctx)
	}

	mergedErrs := make(chan error, 1)
	go func() {
		defer close(mergedErrs)

		for extErrs != nil || sorterErrs != nil {
			select {
			case err, ok := <-extErrs:
				if ok && err != nil {
					mergedErrs <- err

					return
				}
				extErrs = nil // channel closed, disable case.

			case err, ok := <-sorterErrs:
				if ok && err != nil {
					mergedErrs <- err

					return
				}
				sorterErrs = nil // channel closed, disable case.
			}
		}
	}()

	return sorterOut, mergedErrs
}

// writeFileAtomic writes data through a temporary file in the destination
// directory which is then renamed over the destination.
func writeFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := afero.TempFile(fs, dir, ".cpypm-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}

	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move temporary file: %w", err)
	}

	tmpPath = ""

	return nil
}

// withinRoot reports whether path lies inside root and returns the
// slash-separated relative path if it does.
func withinRoot(root string, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}

	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	return filepath.ToSlash(rel), true
}
