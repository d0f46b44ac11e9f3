package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Output formats of [Program.Info].
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type infoStyles struct {
	title lipgloss.Style
	label lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
	dim   lipgloss.Style
}

func newInfoStyles(r *lipgloss.Renderer) infoStyles {
	return infoStyles{
		title: r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		label: r.NewStyle().Foreground(lipgloss.Color("245")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// Info writes a summary of a project to standard output in the given
// format and records the project as recently opened.
func (prog *Program) Info(_ context.Context, project string, format string) error {
	configPath, cfg, err := prog.openProject(project)
	if err != nil {
		return err
	}

	if err := prog.addRecentProject(configPath); err != nil {
		prog.log.Warn().Err(err).Msg("Could not record recent project")
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to encode project: %w", err)
		}
		fmt.Fprintln(prog.stdout, string(data))

	case FormatYAML:
		enc := yaml.NewEncoder(prog.stdout)
		enc.SetIndent(2) //nolint:mnd
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode project: %w", err)
		}

		return enc.Close() //nolint:wrapcheck

	case FormatText, "":
		prog.writeInfoText(cfg, prog.projectRoot(cfg, configPath))

	default:
		return fmt.Errorf("unknown format %q (known: %s, %s, %s)", format, FormatText, FormatJSON, FormatYAML)
	}

	return nil
}

func (prog *Program) writeInfoText(cfg *ProjectConfig, root string) {
	st := newInfoStyles(lipgloss.NewRenderer(prog.stdout))

	var b strings.Builder

	b.WriteString(st.title.Render(cfg.Name) + "\n")
	if desc := strings.TrimSpace(cfg.Description); desc != "" {
		b.WriteString(desc + "\n")
	}
	b.WriteString("\n")

	b.WriteString(st.label.Render("Root:  ") + root + "\n")

	b.WriteString(st.label.Render("Drive: "))
	location := cfg.Location()
	if location == "" {
		b.WriteString(st.dim.Render("not set") + "\n")
	} else if ok, _ := afero.DirExists(prog.fs, location); ok {
		b.WriteString(st.ok.Render(location) + "\n")
	} else {
		b.WriteString(st.bad.Render(location+" (not connected)") + "\n")
	}

	b.WriteString(st.label.Render("Files and directories to sync:") + "\n")
	if len(cfg.Targets) == 0 {
		b.WriteString("  " + st.dim.Render("none") + "\n")
	}
	for _, target := range cfg.Targets {
		b.WriteString("  " + target + "\n")
	}

	fmt.Fprint(prog.stdout, b.String())
}
