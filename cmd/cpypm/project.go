package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

const (
	defaultProjectName = "Untitled"

	embeddedTemplateRoot = "template"
	templateKeepFile     = ".gitkeep"
)

// Entries a CircuitPython board or the host OS drops onto the drive.
var gitignoreEntries = []string{
	".fseventsd/*",
	".metadata_never_index",
	".Trashes",
	"boot_out.txt",
}

//go:embed all:template
var embeddedTemplate embed.FS

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-. ]`)

// NewProjectOptions are the inputs for creating a new project.
type NewProjectOptions struct {
	Parent      string // Directory the project directory is created in
	Name        string // Project name, also used for the directory name
	Description string // Free text description
	Gitignore   bool   // Write a .gitignore for board artifacts
	Template    string // Template directory; empty uses the setting or the built-in template
}

// sanitizeName replaces every character that is unsafe in a directory name.
func sanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// NewProject creates a project directory from a template and fills in its
// .cpypmconfig file. It returns the path of that file.
//
// The project directory is named after the sanitized project name and must
// not exist yet. If anything fails after it was created, it is removed again.
// The ctx parameter controls early cancellation.
func (prog *Program) NewProject(ctx context.Context, opts NewProjectOptions) (string, error) {
	var creationDone bool

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = defaultProjectName
	}

	parent, err := filepath.Abs(opts.Parent)
	if err != nil {
		return "", fmt.Errorf("failed to obtain absolute path: %w", err)
	}

	if ok, err := afero.DirExists(prog.fs, parent); err != nil {
		return "", fmt.Errorf("failed to stat parent directory: %w", err)
	} else if !ok {
		return "", fmt.Errorf("parent directory %s does not exist", parent)
	}

	projectPath := filepath.Join(parent, sanitizeName(name))

	if _, err := prog.fs.Stat(projectPath); err == nil {
		return "", fmt.Errorf("%w: %s", ErrProjectExists, projectPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat project directory: %w", err)
	}

	if err := prog.fs.MkdirAll(projectPath, baseFolderPerms); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	defer func() {
		if !creationDone {
			_ = prog.fs.RemoveAll(projectPath)
		}
	}()

	template := opts.Template
	if template == "" {
		if settings, err := prog.loadSettings(); err != nil {
			prog.log.Warn().Err(err).Msg("Could not load settings, using the built-in template")
		} else {
			template = settings.DefaultTemplate
		}
	}

	if template == "" {
		prog.log.Debug().Str("to", projectPath).Msg("Copying built-in template")
		err = prog.copyEmbeddedTemplate(ctx, projectPath)
	} else {
		prog.log.Debug().Str("from", template).Str("to", projectPath).Msg("Copying template")
		err = prog.copyTemplateDir(ctx, template, projectPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to copy template: %w", err)
	}

	configPath := filepath.Join(projectPath, configFileName)

	cfg, err := loadProjectConfig(prog.fs, configPath)
	if errors.Is(err, ErrNoProject) {
		cfg = &ProjectConfig{}
	} else if err != nil {
		return "", err
	}

	cfg.Name = name
	cfg.Description = opts.Description
	cfg.Root = projectPath

	if err := saveProjectConfig(prog.fs, configPath, cfg); err != nil {
		return "", err
	}

	if opts.Gitignore {
		content := strings.Join(gitignoreEntries, "\n") + "\n"
		if err := afero.WriteFile(prog.fs, filepath.Join(projectPath, ".gitignore"), []byte(content), baseFilePerms); err != nil {
			return "", fmt.Errorf("failed to write .gitignore: %w", err)
		}
	}

	creationDone = true

	if err := prog.addRecentProject(configPath); err != nil {
		prog.log.Warn().Err(err).Msg("Could not record recent project")
	}

	prog.log.Info().Str("path", projectPath).Msg("Made new project")

	return configPath, nil
}

func (prog *Program) copyTemplateDir(ctx context.Context, src string, dst string) error {
	if ok, err := afero.DirExists(prog.fs, src); err != nil || !ok {
		return fmt.Errorf("template %s is not a directory", src)
	}

	return prog.fsWalker.WalkDir(src, func(p string, d fs.DirEntry, err error) error { //nolint:wrapcheck
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			return fmt.Errorf("failed to walk filesystem: %w", err)
		}

		relPath, err := filepath.Rel(src, p)
		if err != nil {
			return fmt.Errorf("failed to obtain relative path: %w", err)
		}

		_, err = prog.copyEntry(p, filepath.Join(dst, relPath), d)

		return err
	})
}

func (prog *Program) copyEmbeddedTemplate(ctx context.Context, dst string) error {
	return fs.WalkDir(embeddedTemplate, embeddedTemplateRoot, func(p string, d fs.DirEntry, err error) error { //nolint:wrapcheck
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			return fmt.Errorf("failed to walk template: %w", err)
		}

		relPath := strings.TrimPrefix(strings.TrimPrefix(p, embeddedTemplateRoot), "/")
		target := filepath.Join(dst, filepath.FromSlash(relPath))

		if d.IsDir() {
			return prog.fs.MkdirAll(target, baseFolderPerms) //nolint:wrapcheck
		}

		// Placeholders only exist so that empty directories are embedded.
		if path.Base(p) == templateKeepFile {
			return nil
		}

		data, err := embeddedTemplate.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}

		return afero.WriteFile(prog.fs, target, data, baseFilePerms) //nolint:wrapcheck
	})
}
