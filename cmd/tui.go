package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/quietriver/cadence/internal/library"
	"github.com/quietriver/cadence/internal/shared"
	"github.com/quietriver/cadence/internal/ui"
	"github.com/urfave/cli/v3"
)

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal UI",
		Action: r.TUI,
	}
}

// TUI launches the interactive terminal interface. The cache layer's refresh
// signals are wired into the running program, and the device poller runs in
// the background for the session's duration.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/cadence-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.manager, r.poller, r.recs)
	p := tea.NewProgram(model, tea.WithAltScreen())

	r.manager.SetNotifier(library.NotifierFunc(func(view string) {
		p.Send(ui.RefreshMsg{View: view})
	}))
	defer r.manager.SetNotifier(nil)

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := r.poller.Watch(pollCtx, r.config.Player.PollInterval()); err != nil && err != context.Canceled {
			fileLogger.Error("device watch stopped", "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
