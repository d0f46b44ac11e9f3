// mkproject is a benchmark helper tool for synthetic project creation.
//
//nolint:mnd
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const modulesPerPackage = 100

var workers = runtime.GOMAXPROCS(0) * 2

func packagePath(base string, p int) string {
	return filepath.Join(base, "lib", fmt.Sprintf("pkg_%03d", p))
}

func createPackage(ctx context.Context, fs afero.Fs, base string, p int, totalModules int) error {
	dir := packagePath(base, p)

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating dir: %w", err)
	}

	for m := range modulesPerPackage {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("error during creation: %w", err)
		}

		index := p*modulesPerPackage + m
		if index >= totalModules {
			break
		}

		content := fmt.Sprintf("VALUE = %d\n", index)
		path := filepath.Join(dir, fmt.Sprintf("module_%03d.py", m))

		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("error creating file: %w", err)
		}
	}

	return nil
}

func writeProjectFiles(fs afero.Fs, base string) error {
	if err := fs.MkdirAll(filepath.Join(base, "lib"), 0o755); err != nil {
		return fmt.Errorf("error creating dir: %w", err)
	}

	if err := afero.WriteFile(fs, filepath.Join(base, "code.py"), []byte("print(\"Hello World!\")\n"), 0o644); err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	// Keys as written by cpypm's .cpypmconfig (cmd/cpypm/config.go).
	cfg := map[string]any{
		"project_name":  filepath.Base(base),
		"description":   "",
		"project_root":  base,
		"sync_location": nil,
		"files_to_sync": []string{"code.py", "lib"},
	}

	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := afero.WriteFile(fs, filepath.Join(base, ".cpypmconfig"), data, 0o644); err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	return nil
}

func createDummyProject(ctx context.Context, fs afero.Fs, base string, totalModules int) error {
	if err := writeProjectFiles(fs, base); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	packagesNeeded := (totalModules + modulesPerPackage - 1) / modulesPerPackage

	for p := range packagesNeeded {
		g.Go(func() error {
			return createPackage(ctx, fs, base, p, totalModules)
		})
	}

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("error during creation: %w", err)
	}

	return nil
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: mkproject <project_dir> <module_count>\n")
		os.Exit(1)
	}

	baseDir, err := filepath.Abs(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid project dir: %v\n", err)
		os.Exit(1)
	}

	totalModules, err := strconv.Atoi(os.Args[2])
	if err != nil || totalModules <= 0 {
		fmt.Fprintf(os.Stderr, "error: invalid module count: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		if err := createDummyProject(ctx, afero.NewOsFs(), baseDir, totalModules); err != nil {
			errChan <- fmt.Errorf("failed to create project: %w", err)
		}
	}()

	for {
		select {
		case <-sigChan:
			cancel()
		case err := <-errChan:
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		}
	}
}
