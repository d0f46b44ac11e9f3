package main

const (
	rootHelpShort = "cpypm creates CircuitPython projects and syncs them onto boards."

	rootHelpLong = `cpypm creates CircuitPython projects and syncs them onto boards.

A project is a directory with a .cpypmconfig file. That file holds the project's
name and description, the drive of the board to sync to, and the list of files
and directories (relative to the project) that make up what is copied onto the
board. Syncing copies each of them onto the drive, replacing directories on the
drive wholesale.

Project commands operate on the project in the working directory unless another
one is selected with --project (a project directory or its .cpypmconfig file).

Paths and listings are printed to standard output (stdout). Any encountered
errors and operational messages are printed to standard error (stderr).

Exit Codes:
  0 - Success
  1 - Differences found (only for 'diff')
  2 - General failure (invalid input, I/O errors, etc.)

For detailed help on a specific command, run:
  cpypm help <command>`

	newHelpShort = "Create a new project from a template"

	newHelpLong = `Create a new project from a template.

The project directory is created inside [parent-folder] (default: the working
directory) and named after the project, with characters that are unsafe in file
names replaced by underscores. It must not exist yet.

The built-in template contains a code.py and an empty lib directory, both of
which are sync targets. Another template directory can be used with --template
or made the default with 'cpypm settings set default_template <dir>'.

With --interactive the project details are asked for in the terminal.

The path of the new project's .cpypmconfig is printed to standard output.`

	newExample = `  cpypm new ~/projects --name "Blinky" --description "Blinks the onboard LED"
  cpypm new -i`

	infoHelpShort = "Show a project's name, description, drive and sync targets"

	infoHelpLong = `Show a project's name, description, drive and sync targets.

The text format marks a drive that is currently not connected. The json and
yaml formats print the .cpypmconfig content for use in scripts.`

	editHelpShort = "Change a project's name, description or drive"

	editHelpLong = `Change a project's name, description or drive.

Only the given values are changed. An empty --drive unsets the drive.
Use 'cpypm drives' to find the drives of connected boards.`

	editExample = `  cpypm edit --drive /media/user/CIRCUITPY
  cpypm edit --name "Blinky v2" --description ""`

	addHelpShort = "Add files or directories to the sync targets"

	addHelpLong = `Add files or directories to the sync targets.

Each path must exist inside the project. Paths that already are sync targets
are skipped. The added targets are printed to standard output.`

	removeHelpShort = "Remove files or directories from the sync targets"

	removeHelpLong = `Remove files or directories from the sync targets.

Paths are given as listed by 'cpypm info'. Nothing is changed on disk.`

	listHelpShort = "List all paths a sync would copy"

	listHelpLong = `List all paths a sync would copy.

Every file and directory below the sync targets is printed to standard output,
directories with a trailing slash. Sorting is done on disk for very large
projects, which can be tuned with the sorting flags.`

	listExample = `  cpypm list --exclude "**/__pycache__/" --exclude "**/*.pyc"`

	diffHelpShort = "Compare a project's sync targets with the board's drive"

	diffHelpLong = `Compare a project's sync targets with the board's drive.

Paths present in the project but not on the drive are printed as '+++ path',
paths present on the drive (below a sync target) but not in the project as
'--- path'. Only paths are compared, not file contents.

The command exits with code 1 if differences were found.`

	syncHelpShort = "Copy the sync targets onto the board's drive"

	syncHelpLong = `Copy the sync targets onto the board's drive.

Files overwrite their counterpart on the drive. Directories replace their
counterpart on the drive wholesale, so files removed from a directory in the
project are removed from the drive as well. Paths matching an --exclude pattern
(relative to the project, '**' globbing supported, a trailing slash only
matches directories) are skipped.

Only one sync can run for a project at a time. The copied paths are printed to
standard output.`

	syncExample = `  cpypm sync
  cpypm sync -p ~/projects/Blinky --exclude "**/*.md"`

	packHelpShort = "Bundle the sync targets into a tarball"

	packHelpLong = `Bundle the sync targets into a tarball.

The tarball contains everything a sync would copy, with paths relative to the
project, so it can be extracted onto a board later or elsewhere.`

	packExample = `  cpypm pack blinky.tar.gz`

	watchHelpShort = "Sync whenever the sync targets change"

	watchHelpLong = `Sync whenever the sync targets change.

The project is synced once at startup and again every time files below the
sync targets change, after changes have settled for the --debounce duration.
A failed sync is reported and watching continues until interrupted.`

	drivesHelpShort = "List the drives of connected CircuitPython boards"

	drivesHelpLong = `List the drives of connected CircuitPython boards.

Drives are looked for below the configured mount point (see 'cpypm settings'),
one and two levels deep. A drive belongs to a CircuitPython board if it holds a
boot_out.txt file; --all lists every drive found.`

	recentHelpShort = "List or clear the recently opened projects"

	settingsHelpShort = "Show or change the application settings"

	settingsHelpLong = `Show or change the application settings.

The settings are stored in the user's configuration directory. The keys
unix_drive_mount_point and default_template can be changed; setting an empty
value restores the default.`

	readmeHelpShort = "Show the manual"
)
