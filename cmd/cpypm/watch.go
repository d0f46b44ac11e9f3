package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 500 * time.Millisecond

// debouncer calls fn once after calls to trigger have stopped for the delay.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fn    func()
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}

// Watch syncs a project once and then again every time one of its sync
// targets changes, after changes have settled for the debounce duration.
//
// A failing sync is logged and watching continues. Watching needs the
// operating system's filesystem. The ctx parameter stops the watch.
func (prog *Program) Watch(ctx context.Context, project string, excludes []string, debounce time.Duration) error {
	if err := validateExcludes(excludes); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}

	configPath, cfg, err := prog.openProject(project)
	if err != nil {
		return err
	}

	if _, err := prog.syncLocation(cfg); err != nil {
		return err
	}

	root := prog.projectRoot(cfg, configPath)

	targets, err := cleanTargets(root, cfg.Targets)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	for _, target := range targets {
		if err := prog.walkTarget(ctx, root, target, excludes, false, func(rel string, abs string, d fs.DirEntry) error {
			if !d.IsDir() {
				// Changes to a file target only surface on its parent directory.
				if dir := filepath.Dir(abs); rel == target && dir != root {
					return watcher.Add(dir) //nolint:wrapcheck
				}

				return nil
			}

			return watcher.Add(abs) //nolint:wrapcheck
		}); err != nil {
			return fmt.Errorf("failed to watch targets: %w", err)
		}
	}

	syncs := make(chan struct{}, 1)
	requestSync := func() {
		select {
		case syncs <- struct{}{}:
		default:
		}
	}
	debounced := newDebouncer(debounce, requestSync)
	defer debounced.stop()

	requestSync()

	prog.log.Info().Str("projectRoot", root).Dur("debounce", debounce).Msg("Watching for changes")

	for {
		select {
		case <-ctx.Done():
			prog.log.Info().Msg("Stopped watching")

			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			rel, relevant := watchedTarget(root, targets, ev.Name, excludes)
			if !relevant {
				continue
			}

			if ev.Has(fsnotify.Create) {
				if info, err := prog.fs.Stat(ev.Name); err == nil && info.IsDir() {
					if err := watcher.Add(ev.Name); err != nil {
						prog.log.Warn().Err(err).Str("path", ev.Name).Msg("Failed to watch new directory")
					}
				}
			}

			prog.log.Debug().Str("path", rel).Str("op", ev.Op.String()).Msg("Change detected")
			debounced.trigger()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			prog.log.Warn().Err(err).Msg("Watcher error")

		case <-syncs:
			if err := prog.Sync(ctx, configPath, excludes); err != nil {
				prog.log.Error().Err(err).Msg("Sync failed")
			}
		}
	}
}

// watchedTarget reports whether a changed path belongs to a sync target and
// is not excluded. Files the sync itself creates in the project are ignored.
func watchedTarget(root string, targets []string, path string, excludes []string) (string, bool) {
	rel, ok := withinRoot(root, path)
	if !ok {
		return "", false
	}

	base := filepath.Base(path)
	if base == lockFileName || (strings.HasPrefix(base, ".cpypm-") && strings.HasSuffix(base, ".tmp")) {
		return "", false
	}

	for _, target := range targets {
		if rel != target && !strings.HasPrefix(rel, target+"/") {
			continue
		}

		if excluded, err := isExcluded(rel, false, excludes); err != nil || excluded {
			return "", false
		}

		return rel, true
	}

	return "", false
}
