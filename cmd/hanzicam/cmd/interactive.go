package cmd

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/hanzicam/internal/frame"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/f3rmion/hanzicam/internal/tui"
	"github.com/f3rmion/hanzicam/internal/tui/bigchar"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i", "ui"},
	Short:   "Launch interactive TUI",
	Long: `Launch the terminal UI.

Capture: type the path of a photo and press enter. Recognized characters are
shown with tone-colored pinyin; select one to see it large with its meaning
and dictionary details.

History: browse the recent recognitions and open one again.`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	// Log records would tear the alt screen.
	a, err := setup(io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	notifier := tui.NewNotifier()
	ctrl, err := a.controller(notifier)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	opts := a.cfg.Scan.CaptureOptions()
	capture := func(ctx context.Context, path string) (session.Outcome, error) {
		img, err := frame.FileSource{Path: path}.Snapshot(ctx, opts)
		if err != nil {
			return session.Outcome{}, err
		}
		return ctrl.Capture(ctx, img)
	}

	p := tea.NewProgram(
		tui.NewApp(tui.Deps{
			Capture:      capture,
			LoadHistory:  a.store.LoadAll,
			ClearHistory: ctrl.ClearHistory,
			Notifier:     notifier,
			Dictionary:   a.dict,
			Glyphs:       bigchar.System(),
			GroupSize:    a.cfg.Scan.CaptureGroupSize,
		}),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
