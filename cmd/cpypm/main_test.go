package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// A helper function for tests to run the root command against the given filesystem.
func executeCLI(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer

	cmd := newRootCmd(t.Context(), fs, &stdout, &bytes.Buffer{})
	cmd.SetArgs(append([]string{"--settings", testSettingsPath}, args...))

	err := cmd.Execute()

	return stdout.String(), err
}

// Expectation: The 'new' subcommand should create a project and print its config path.
func Test_CLI_NewCommand_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/projects", 0o755))

	out, err := executeCLI(t, fs, "new", "/projects", "--name", "Blinky", "-d", "Blinks")
	require.NoError(t, err)
	require.Equal(t, "/projects/Blinky/.cpypmconfig\n", out)

	require.Equal(t, "Blinks", readTestProject(t, fs, "/projects/Blinky/.cpypmconfig").Description)

	_, err = fs.Stat("/projects/Blinky/.gitignore")
	require.NoError(t, err)
}

// Expectation: The 'new' subcommand should error for an existing project.
func Test_CLI_NewCommand_Exists_Error(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/projects/Untitled", 0o755))

	_, err := executeCLI(t, fs, "new", "/projects")
	require.ErrorIs(t, err, ErrProjectExists)
}

// Expectation: A project should be editable, syncable and then without differences through the CLI.
func Test_CLI_EditSyncDiff_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/projects", 0o755))
	require.NoError(t, fs.MkdirAll("/media/CIRCUITPY", 0o755))

	_, err := executeCLI(t, fs, "new", "/projects", "--name", "Blinky")
	require.NoError(t, err)

	_, err = executeCLI(t, fs, "-p", "/projects/Blinky", "edit", "--drive", "/media/CIRCUITPY")
	require.NoError(t, err)

	_, err = executeCLI(t, fs, "-p", "/projects/Blinky", "diff")
	require.ErrorIs(t, err, ErrDiffsFound)

	out, err := executeCLI(t, fs, "-p", "/projects/Blinky", "sync")
	require.NoError(t, err)
	require.Equal(t, "code.py\nlib\n", out)

	_, err = executeCLI(t, fs, "-p", "/projects/Blinky", "diff")
	require.NoError(t, err)
}

// Expectation: The 'edit' subcommand should error when nothing is to be changed.
func Test_CLI_EditCommand_NoFlags_Error(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestProject(t, fs, "/proj", "", nil, nil)

	_, err := executeCLI(t, fs, "-p", "/proj", "edit")
	require.ErrorContains(t, err, "nothing to change")
}

// Expectation: The 'add' and 'remove' subcommands should change the sync targets.
func Test_CLI_AddRemoveCommand_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	configPath := writeTestProject(t, fs, "/proj", "", []string{"code.py"}, map[string]string{
		"code.py": "",
		"boot.py": "",
	})

	_, err := executeCLI(t, fs, "-p", "/proj", "add", "/proj/boot.py")
	require.NoError(t, err)
	require.Equal(t, []string{"code.py", "boot.py"}, readTestProject(t, fs, configPath).Targets)

	_, err = executeCLI(t, fs, "-p", "/proj", "rm", "code.py")
	require.NoError(t, err)
	require.Equal(t, []string{"boot.py"}, readTestProject(t, fs, configPath).Targets)
}

// Expectation: The 'add' subcommand should error when missing arguments.
func Test_CLI_AddCommand_ArgCount_Error(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := executeCLI(t, fs, "add")
	require.Error(t, err)
}

// Expectation: The 'list' subcommand should print the sorted paths.
func Test_CLI_ListCommand_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestProject(t, fs, "/proj", "", []string{"lib", "code.py"}, map[string]string{
		"code.py":  "",
		"lib/a.py": "",
	})

	out, err := executeCLI(t, fs, "-p", "/proj", "list")
	require.NoError(t, err)
	require.Equal(t, "code.py\nlib/\nlib/a.py\n", out)

	out, err = executeCLI(t, fs, "-p", "/proj", "list", "--sort=false", "--exclude", "lib/")
	require.NoError(t, err)
	require.Equal(t, "code.py\n", out)
}

// Expectation: The 'info' subcommand should print the project in the requested format.
func Test_CLI_InfoCommand_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestProject(t, fs, "/proj", "", []string{"code.py"}, nil)

	out, err := executeCLI(t, fs, "-p", "/proj", "info", "-f", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"project_name": "Test"`)
}

// Expectation: The 'pack' subcommand should write the tarball.
func Test_CLI_PackCommand_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestProject(t, fs, "/proj", "", []string{"code.py"}, map[string]string{"code.py": "print(1)"})

	_, err := executeCLI(t, fs, "-p", "/proj", "pack", "/out/blinky.tar.gz", "--blockcount", "2")
	require.NoError(t, err)

	names, _ := readTarball(t, fs, "/out/blinky.tar.gz")
	require.Equal(t, []string{"code.py"}, names)
}

// Expectation: The 'settings' subcommands should show and change the settings.
func Test_CLI_SettingsCommand_Success(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := executeCLI(t, fs, "settings", "set", settingMountPoint, "/run/media")
	require.NoError(t, err)

	out, err := executeCLI(t, fs, "settings", "show")
	require.NoError(t, err)
	require.Contains(t, out, "unix_drive_mount_point = '/run/media'")

	_, err = executeCLI(t, fs, "settings", "set", "unknown", "value")
	require.ErrorIs(t, err, ErrUnknownSetting)
}

// Expectation: The 'recent' subcommand should list the projects opened before.
func Test_CLI_RecentCommand_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestProject(t, fs, "/proj", "", nil, nil)

	_, err := executeCLI(t, fs, "-p", "/proj", "info")
	require.NoError(t, err)

	out, err := executeCLI(t, fs, "recent")
	require.NoError(t, err)
	require.Equal(t, "/proj/.cpypmconfig\n", out)

	_, err = executeCLI(t, fs, "recent", "--clear")
	require.NoError(t, err)

	out, err = executeCLI(t, fs, "recent")
	require.NoError(t, err)
	require.Empty(t, out)
}

// Expectation: The 'drives' subcommand should list CircuitPython drives below the configured mount point.
func Test_CLI_DrivesCommand_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/mnt/CIRCUITPY/boot_out.txt", nil, 0o644))

	_, err := executeCLI(t, fs, "settings", "set", settingMountPoint, "/mnt")
	require.NoError(t, err)

	out, err := executeCLI(t, fs, "drives")
	require.NoError(t, err)
	require.Equal(t, "/mnt/CIRCUITPY\n", out)
}

// Expectation: Log lines should be written to the log file when one is given.
func Test_CLI_LogFile_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/drive", 0o755))
	writeTestProject(t, fs, "/proj", "/drive", []string{"code.py"}, map[string]string{"code.py": ""})

	_, err := executeCLI(t, fs, "-v", "--log-file", "/logs/cpypm.log", "-p", "/proj", "sync")
	require.NoError(t, err)

	require.Contains(t, readTestFile(t, fs, "/logs/cpypm.log"), "Sync complete")
}

// Expectation: The 'readme' subcommand should print the manual.
func Test_CLI_ReadmeCommand_Success(t *testing.T) {
	out, err := executeCLI(t, afero.NewMemMapFs(), "readme")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

// Expectation: The root command should error when given an unknown subcommand.
func Test_CLI_UnknownCommand_Error(t *testing.T) {
	_, err := executeCLI(t, afero.NewMemMapFs(), "unknown-subcommand")
	require.Error(t, err)
}
