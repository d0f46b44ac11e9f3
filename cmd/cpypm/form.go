package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// isTerminal reports whether the given stream is attached to a terminal.
func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newProjectForm asks for the details of a new project, prefilled from opts.
func newProjectForm(opts *NewProjectOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project location").
				Description("The directory the project directory is created in.").
				Value(&opts.Parent).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("location cannot be empty")
					}

					return nil
				}),
			huh.NewInput().
				Title("Project name").
				Placeholder(defaultProjectName).
				Value(&opts.Name),
			huh.NewText().
				Title("Description").
				Lines(4). //nolint:mnd
				Value(&opts.Description),
			huh.NewConfirm().
				Title("Generate a .gitignore?").
				Affirmative("Yes").
				Negative("No").
				Value(&opts.Gitignore),
		),
	).WithTheme(huh.ThemeCharm())
}

// askNewProject runs the new project form on the given terminal streams.
func askNewProject(ctx context.Context, in io.Reader, out io.Writer, opts *NewProjectOptions) error {
	if !isTerminal(in) {
		return ErrNotTerminal
	}

	if err := newProjectForm(opts).WithInput(in).WithOutput(out).RunWithContext(ctx); err != nil {
		return fmt.Errorf("failed to ask for project details: %w", err)
	}

	return nil
}
