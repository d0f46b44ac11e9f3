/*
cpypm creates CircuitPython projects and syncs them onto boards.

A project is a directory holding a .cpypmconfig file, which records the
project's name and description, the drive of the board to sync to, and the
files and directories that are copied onto the board. It supports these
commands:

	new      - create a project directory from a template
	info     - show a project's metadata and sync targets
	edit     - change a project's name, description or drive
	add      - add files or directories to the sync targets
	remove   - remove files or directories from the sync targets
	list     - list every path a sync would copy
	diff     - compare the sync targets with the board's drive
	sync     - copy the sync targets onto the board's drive
	pack     - bundle the sync targets into a tarball
	watch    - sync whenever the sync targets change
	drives   - list the drives of connected boards
	recent   - list or clear the recently opened projects
	settings - show or change the application settings
	readme   - show the manual

All commands print their primary results (such as paths or listings) to standard
output (stdout). Any encountered errors and operational messages are printed to
standard error (stderr).

Exit Codes:

	0 - Success
	1 - Differences found (only for 'diff')
	2 - General failure (invalid input, I/O errors, etc.)
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lanrat/extsort"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const (
	baseFilePerms   = 0o644
	baseFolderPerms = 0o755

	fsStreamBuffer = 1000

	exitTimeout        = 10 * time.Second
	exitCodeSuccess    = 0
	exitCodeDiffsFound = 1
	exitCodeFailure    = 2
)

var (
	// Version is automatically populated by the build process (Makefile).
	Version string

	//nolint:mnd
	pgzipConfigDefault = PgzipConfig{
		BlockSize:  1 << 20,               // Approximate size of blocks
		BlockCount: runtime.GOMAXPROCS(0), // Amount of blocks processing in parallel
	}

	//nolint:mnd
	extSortConfigDefault = extsort.Config{
		ChunkSize:          100_000,                       // Records per chunk (default: 1M)
		NumWorkers:         min(4, runtime.GOMAXPROCS(0)), // Parallel sorting/merging workers (default: 2)
		ChanBuffSize:       1,                             // Channel buffer size (default: 1)
		SortedChanBuffSize: 1000,                          // Output channel buffer (default: 1000)
		TempFilesDir:       "",                            // Temporary files directory (default: intelligent selection)
	}
)

// Program is the primary structure of the application.
type Program struct {
	fs       afero.Fs
	fsWalker Walker

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger

	settingsPath string

	pgzipConfig   *PgzipConfig
	extSortConfig *extsort.Config
}

// NewProgram returns a pointer to a new [Program].
func NewProgram(fs afero.Fs, stdout io.Writer, stderr io.Writer, pgzipConfig *PgzipConfig, extsortConfig *extsort.Config) *Program {
	var walker Walker

	if fs == nil {
		fs = afero.NewOsFs()
	}

	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	if pgzipConfig == nil {
		cfg := pgzipConfigDefault
		pgzipConfig = &cfg
	}

	if extsortConfig == nil {
		cfg := extSortConfigDefault
		extsortConfig = &cfg
	}

	if _, ok := fs.(*afero.OsFs); ok {
		walker = OSWalker{}
	} else {
		walker = AferoWalker{FS: fs}
	}

	logger, _, _ := newLogger(fs, stderr, 0, "")

	return &Program{
		fs:            fs,
		fsWalker:      walker,
		stdin:         os.Stdin,
		stdout:        stdout,
		stderr:        stderr,
		log:           logger,
		settingsPath:  defaultSettingsPath(),
		pgzipConfig:   pgzipConfig,
		extSortConfig: extsortConfig,
	}
}

//nolint:funlen,maintidx
func newRootCmd(ctx context.Context, fs afero.Fs, stdout io.Writer, stderr io.Writer) *cobra.Command {
	var (
		project      string
		verbosity    int
		logFile      string
		settingsPath string

		logger   = zerolog.Nop()
		closeLog = func() error { return nil }
	)

	if fs == nil {
		fs = afero.NewOsFs()
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	newProg := func(pgzipConfig *PgzipConfig, extsortConfig *extsort.Config) *Program {
		prog := NewProgram(fs, stdout, stderr, pgzipConfig, extsortConfig)
		prog.log = logger
		prog.settingsPath = settingsPath

		return prog
	}

	rootCmd := &cobra.Command{
		Use:               "cpypm",
		Short:             rootHelpShort,
		Long:              rootHelpLong,
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error

			logger, closeLog, err = newLogger(fs, stderr, verbosity, logFile)

			return err
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return closeLog()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&project, "project", "p", "", "project directory or .cpypmconfig file (default: working directory)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity; can be repeated multiple times")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "additionally append log lines to this file")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", defaultSettingsPath(), "path of the settings file")

	var newOpts NewProjectOptions
	var newNoGitignore, newInteractive bool
	newCmd := &cobra.Command{
		Use:     "new [parent-folder]",
		Short:   newHelpShort,
		Long:    newHelpLong,
		Example: newExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			prog := newProg(nil, nil)

			opts := newOpts
			opts.Gitignore = !newNoGitignore
			if len(args) > 0 {
				opts.Parent = args[0]
			}

			if newInteractive {
				if opts.Parent == "" {
					if settings, err := prog.loadSettings(); err == nil {
						opts.Parent = settings.LastDirOpened
					}
				}
				if err := askNewProject(ctx, prog.stdin, stderr, &opts); err != nil {
					return err
				}
			}

			if opts.Parent == "" {
				opts.Parent = "."
			}

			configPath, err := prog.NewProject(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(prog.stdout, configPath)

			return nil
		},
	}
	newCmd.Flags().StringVarP(&newOpts.Name, "name", "n", defaultProjectName, "name of the project")
	newCmd.Flags().StringVarP(&newOpts.Description, "description", "d", "", "description of the project")
	newCmd.Flags().StringVar(&newOpts.Template, "template", "", "template directory to copy (default: the configured or built-in template)")
	newCmd.Flags().BoolVar(&newNoGitignore, "no-gitignore", false, "do not generate a .gitignore")
	newCmd.Flags().BoolVarP(&newInteractive, "interactive", "i", false, "ask for the project details in the terminal")

	infoFormat := FormatText
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: infoHelpShort,
		Long:  infoHelpLong,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newProg(nil, nil).Info(ctx, project, infoFormat)
		},
	}
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", FormatText, "output format (text, json or yaml)")

	var editName, editDescription, editDrive string
	editCmd := &cobra.Command{
		Use:     "edit",
		Short:   editHelpShort,
		Long:    editHelpLong,
		Example: editExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts EditOptions

			if cmd.Flags().Changed("name") {
				opts.Name = &editName
			}
			if cmd.Flags().Changed("description") {
				opts.Description = &editDescription
			}
			if cmd.Flags().Changed("drive") {
				opts.SyncLocation = &editDrive
			}

			if opts.Name == nil && opts.Description == nil && opts.SyncLocation == nil {
				return errors.New("nothing to change; use --name, --description or --drive")
			}

			return newProg(nil, nil).Edit(ctx, project, opts)
		},
	}
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "new name of the project")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "new description of the project")
	editCmd.Flags().StringVar(&editDrive, "drive", "", "drive to sync to; empty to unset")

	addCmd := &cobra.Command{
		Use:   "add <path>...",
		Short: addHelpShort,
		Long:  addHelpLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return newProg(nil, nil).AddTargets(ctx, project, args)
		},
	}

	removeCmd := &cobra.Command{
		Use:     "remove <path>...",
		Aliases: []string{"rm"},
		Short:   removeHelpShort,
		Long:    removeHelpLong,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return newProg(nil, nil).RemoveTargets(ctx, project, args)
		},
	}

	var listExcludes []string
	listSort := true
	listSorterConfig := extSortConfigDefault
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   listHelpShort,
		Long:    listHelpLong,
		Example: listExample,
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newProg(nil, &listSorterConfig).List(ctx, project, listSort, listExcludes)
		},
	}
	listCmd.Flags().StringArrayVar(&listExcludes, "exclude", nil, "pattern to exclude; can be repeated multiple times")
	listCmd.Flags().BoolVar(&listSort, "sort", true, "sort the output list; for better comparability")
	listCmd.Flags().StringVar(&listSorterConfig.TempFilesDir, "tmpdir", extSortConfigDefault.TempFilesDir, "on-disk location for intermediate files")
	listCmd.Flags().IntVar(&listSorterConfig.NumWorkers, "workers", extSortConfigDefault.NumWorkers, "workers for concurrent operations")
	listCmd.Flags().IntVar(&listSorterConfig.ChunkSize, "chunksize", extSortConfigDefault.ChunkSize, "max records per worker before spilling to disk")

	var diffExcludes []string
	diffSorterConfig := extSortConfigDefault
	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: diffHelpShort,
		Long:  diffHelpLong,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := newProg(nil, &diffSorterConfig).Diff(ctx, project, diffExcludes)

			return err
		},
	}
	diffCmd.Flags().StringArrayVar(&diffExcludes, "exclude", nil, "pattern to exclude; can be repeated multiple times")
	diffCmd.Flags().StringVar(&diffSorterConfig.TempFilesDir, "tmpdir", extSortConfigDefault.TempFilesDir, "on-disk location for intermediate files")
	diffCmd.Flags().IntVar(&diffSorterConfig.NumWorkers, "workers", extSortConfigDefault.NumWorkers, "workers for concurrent operations")
	diffCmd.Flags().IntVar(&diffSorterConfig.ChunkSize, "chunksize", extSortConfigDefault.ChunkSize, "max records per worker before spilling to disk")

	var syncExcludes []string
	syncCmd := &cobra.Command{
		Use:     "sync",
		Short:   syncHelpShort,
		Long:    syncHelpLong,
		Example: syncExample,
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newProg(nil, nil).Sync(ctx, project, syncExcludes)
		},
	}
	syncCmd.Flags().StringArrayVar(&syncExcludes, "exclude", nil, "pattern to exclude; can be repeated multiple times")

	var packExcludes []string
	packCompressorConfig := pgzipConfigDefault
	packCmd := &cobra.Command{
		Use:     "pack <output.tar.gz>",
		Short:   packHelpShort,
		Long:    packHelpLong,
		Example: packExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return newProg(&packCompressorConfig, nil).Pack(ctx, project, args[0], packExcludes)
		},
	}
	packCmd.Flags().StringArrayVar(&packExcludes, "exclude", nil, "pattern to exclude; can be repeated multiple times")
	packCmd.Flags().IntVar(&packCompressorConfig.BlockSize, "blocksize", pgzipConfigDefault.BlockSize, "block size for compressing")
	packCmd.Flags().IntVar(&packCompressorConfig.BlockCount, "blockcount", pgzipConfigDefault.BlockCount, "blocks to compress in parallel")

	var watchExcludes []string
	var watchDebounce time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: watchHelpShort,
		Long:  watchHelpLong,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newProg(nil, nil).Watch(ctx, project, watchExcludes, watchDebounce)
		},
	}
	watchCmd.Flags().StringArrayVar(&watchExcludes, "exclude", nil, "pattern to exclude; can be repeated multiple times")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", defaultWatchDebounce, "quiet period before syncing after a change")

	var drivesAll bool
	drivesCmd := &cobra.Command{
		Use:   "drives",
		Short: drivesHelpShort,
		Long:  drivesHelpLong,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newProg(nil, nil).Drives(ctx, drivesAll)
		},
	}
	drivesCmd.Flags().BoolVarP(&drivesAll, "all", "a", false, "list all drives instead of just CircuitPython drives")

	var recentClear bool
	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: recentHelpShort,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newProg(nil, nil).Recent(ctx, recentClear)
		},
	}
	recentCmd.Flags().BoolVar(&recentClear, "clear", false, "clear the recent projects")

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: settingsHelpShort,
		Long:  settingsHelpLong,
	}
	settingsShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the application settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newProg(nil, nil).SettingsShow(ctx)
		},
	}
	settingsSetCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change an application setting",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(_ *cobra.Command, args []string) error {
			return newProg(nil, nil).SettingsSet(ctx, args[0], args[1])
		},
	}
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)

	readmeCmd := &cobra.Command{
		Use:   "readme",
		Short: readmeHelpShort,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return newProg(nil, nil).Readme(ctx)
		},
	}

	rootCmd.AddCommand(newCmd, infoCmd, editCmd, addCmd, removeCmd, listCmd, diffCmd,
		syncCmd, packCmd, watchCmd, drivesCmd, recentCmd, settingsCmd, readmeCmd)

	return rootCmd
}

func main() {
	var exitCode int

	defer func() {
		os.Exit(exitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		rootCmd := newRootCmd(ctx, afero.NewOsFs(), os.Stdout, os.Stderr)
		errChan <- rootCmd.Execute()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			if errors.Is(err, ErrDiffsFound) {
				exitCode = exitCodeDiffsFound
			} else {
				exitCode = exitCodeFailure
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		} else {
			exitCode = exitCodeSuccess
		}

	case <-sigChan:
		fmt.Fprintln(os.Stderr, "interrupting...")
		cancel()

		select {
		case <-errChan:
			exitCode = exitCodeFailure
			fmt.Fprintln(os.Stderr, "interrupted (exited)")
		case <-time.After(exitTimeout):
			exitCode = exitCodeFailure
			fmt.Fprintln(os.Stderr, "interrupted (killed)")
		}
	}
}
