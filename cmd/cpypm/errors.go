package main

import "errors"

var (
	// ErrDiffsFound is an exit-code relevant sentinel error.
	ErrDiffsFound = errors.New("differences were found")

	// ErrNoProject is returned when no .cpypmconfig file can be found.
	ErrNoProject = errors.New("no project found")

	// ErrProjectExists is returned when a new project would overwrite an existing directory.
	ErrProjectExists = errors.New("a project already exists under the same name")

	// ErrNoSyncLocation is returned when a project has no sync location configured.
	ErrNoSyncLocation = errors.New("sync location has not been set")

	// ErrSyncLocationMissing is returned when the configured sync location is not mounted.
	ErrSyncLocationMissing = errors.New("sync location is not available")

	// ErrSyncInProgress is returned when another sync holds the project lock.
	ErrSyncInProgress = errors.New("another sync is already in progress")

	// ErrTargetMissing is returned when a sync target does not exist in the project.
	ErrTargetMissing = errors.New("sync target does not exist")

	// ErrOutsideProject is returned when a path does not lie within the project root.
	ErrOutsideProject = errors.New("path is not in the project")

	// ErrTargetUnknown is returned when removing a path that is not a sync target.
	ErrTargetUnknown = errors.New("path is not a sync target")

	// ErrUnknownSetting is returned for setting keys that cannot be set.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrNotTerminal is returned when an interactive form is requested without a terminal.
	ErrNotTerminal = errors.New("interactive mode requires a terminal")
)
