package main

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

const readmeWidth = 100

//go:embed manual.md
var manual string

// Readme renders the built-in manual to standard output. Styling is only
// applied when standard output is a terminal.
func (prog *Program) Readme(_ context.Context) error {
	options := []glamour.TermRendererOption{
		glamour.WithWordWrap(readmeWidth),
	}

	if isTerminal(prog.stdout) {
		options = append(options, glamour.WithAutoStyle())
	} else {
		options = append(options, glamour.WithStandardStyle(styles.NoTTYStyle))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return fmt.Errorf("failed to initialize markdown renderer: %w", err)
	}

	rendered, err := renderer.Render(manual)
	if err != nil {
		return fmt.Errorf("failed to render manual: %w", err)
	}

	fmt.Fprint(prog.stdout, rendered)

	return nil
}
