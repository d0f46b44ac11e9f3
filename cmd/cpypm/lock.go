package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// lockFileName marks a sync in flight; it lives in the project root and is
// never a sync target itself.
const lockFileName = ".cpypm.lock"

// acquireSyncLock creates the project's lock file exclusively and returns a
// function releasing it again.
func (prog *Program) acquireSyncLock(root string) (func(), error) {
	path := filepath.Join(root, lockFileName)

	f, err := prog.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, baseFilePerms)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: remove %s if no other sync is running", ErrSyncInProgress, path)
		}

		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}

	if werr != nil {
		_ = prog.fs.Remove(path)

		return nil, fmt.Errorf("failed to write lock file: %w", werr)
	}

	return func() {
		if err := prog.fs.Remove(path); err != nil {
			prog.log.Warn().Err(err).Str("path", path).Msg("Failed to remove lock file")
		}
	}, nil
}
