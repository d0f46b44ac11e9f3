package main

import (
	"context"
	"fmt"

	"github.com/lanrat/extsort/diff"
)

// Diff compares the sync targets of a project with their counterparts on
// the sync location and reports the differences on standard output.
//
// Paths only present in the project are printed as "+++ path", paths only
// present on the sync location (below a sync target) as "--- path". File
// contents are not compared. Targets missing on the sync location are
// treated as empty, targets missing in the project are an error.
//
// This function returns:
//   - (*diff.Result, ErrDiffsFound): if any differences are found
//   - (*diff.Result, nil): if both sides list the same paths
//   - (nil, error): for any other failure (I/O, sorting, missing targets, etc.)
//
// The ctx parameter controls early cancellation.
func (prog *Program) Diff(ctx context.Context, project string, excludes []string) (*diff.Result, error) {
	if err := validateExcludes(excludes); err != nil {
		return nil, err
	}

	configPath, cfg, err := prog.openProject(project)
	if err != nil {
		return nil, err
	}

	location, err := prog.syncLocation(cfg)
	if err != nil {
		return nil, err
	}

	root := prog.projectRoot(cfg, configPath)

	targets, err := cleanTargets(root, cfg.Targets)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deviceStream, deviceErrs := prog.targetPathStream(ctx, location, targets, excludes, false, true)
	projectStream, projectErrs := prog.targetPathStream(ctx, root, targets, excludes, true, true)

	result, err := diff.Strings(
		ctx,
		deviceStream, projectStream,
		deviceErrs, projectErrs,
		func(delta diff.Delta, item string) error {
			switch delta {
			case diff.OLD:
				fmt.Fprintf(prog.stdout, "--- %s\n", item)
			case diff.NEW:
				fmt.Fprintf(prog.stdout, "+++ %s\n", item)
			}

			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failure during diff: %w", err)
	}

	if result.ExtraA > 0 || result.ExtraB > 0 {
		return &result, ErrDiffsFound
	}

	return &result, nil
}
