package main

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	pgzip "github.com/klauspost/pgzip"
)

// Pack writes all sync targets of a project, with their contents, into a
// gzip compressed tarball.
//
// Entry names are relative to the project root, so extracting the tarball
// onto a board reproduces what a sync would have written. Paths matching
// the excludes slice are skipped. A failed or cancelled pack removes its
// partial output. The ctx parameter controls early cancellation.
func (prog *Program) Pack(ctx context.Context, project string, output string, excludes []string) error {
	var packDone bool

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

	out, err := prog.fs.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		if !packDone {
			_ = prog.fs.Remove(output)
		}
	}()
	defer out.Close()

	gw, err := pgzip.NewWriterLevel(out, pgzip.DefaultCompression)
	if err != nil {
		return fmt.Errorf("failed to initialize gzip writer: %w", err)
	}
	defer gw.Close()

	if err := gw.SetConcurrency(prog.pgzipConfig.BlockSize, prog.pgzipConfig.BlockCount); err != nil {
		return fmt.Errorf("failed to set gzip writer settings: %w", err)
	}

	tw := tar.NewWriter(gw)
	defer tw.Close()

	var stats copyStats
	for _, target := range targets {
		if err := prog.walkTarget(ctx, root, target, excludes, true, func(rel string, abs string, d fs.DirEntry) error {
			n, err := prog.writeTarEntry(tw, rel, abs, d)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", rel, err)
			}

			if d.IsDir() {
				stats.Dirs++
			} else {
				stats.Files++
				stats.Bytes += n
			}

			fmt.Fprintln(prog.stdout, rel)

			return nil
		}); err != nil {
			return fmt.Errorf("failure during pack: %w", err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalize tarball: %w", err)
	}

	if err := gw.Close(); err != nil {
		return fmt.Errorf("failed to finalize gzip stream: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	prog.log.Info().Int("files", stats.Files).Int("dirs", stats.Dirs).Int64("bytes", stats.Bytes).Str("output", output).Msg("Pack complete")

	packDone = true

	return nil
}

func (prog *Program) writeTarEntry(tw *tar.Writer, name string, path string, d fs.DirEntry) (int64, error) {
	info, err := d.Info()
	if err != nil {
		return 0, fmt.Errorf("failed to stat: %w", err)
	}

	if !d.IsDir() && !info.Mode().IsRegular() {
		prog.log.Warn().Str("path", path).Msg("Skipping irregular file")

		return 0, nil
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return 0, fmt.Errorf("failed to build tar header: %w", err)
	}

	hdr.Name = name
	if d.IsDir() && !strings.HasSuffix(hdr.Name, "/") {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return 0, fmt.Errorf("failed to write tar header: %w", err)
	}

	if d.IsDir() {
		return 0, nil
	}

	f, err := prog.fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(tw, f)
	if err != nil {
		return n, fmt.Errorf("failed to copy content: %w", err)
	}

	return n, nil
}
