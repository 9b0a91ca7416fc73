package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/prepx/internal/shared"
	"github.com/desertthunder/prepx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive question browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	filter, err := questionFilter(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	r.authorize(ctx)
	model := ui.NewModel(ctx, r.svc, r.practiceEngine(), filter)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
