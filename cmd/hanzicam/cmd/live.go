package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/f3rmion/hanzicam/internal/annotate"
	"github.com/f3rmion/hanzicam/internal/frame"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/spf13/cobra"
)

var liveCmd = &cobra.Command{
	Use:   "live <dir> [dir...]",
	Short: "Continuously scan the newest frame in a directory",
	Long: `Watch a directory that a camera tool writes frames into and scan the
newest frame periodically. Scans are spaced at least scan.min_interval apart
and only one is outstanding at a time; frames arriving in between replace
each other.

With several directories (one per camera), press Enter to switch to the
next one. A scan still running for the previous camera is discarded.

Each result is printed in groups of scan.live_group_size characters.
Press Ctrl+C to stop.

Example:
  ffmpeg -f v4l2 -i /dev/video0 -vf fps=1 -update 1 /tmp/cam/frame.jpg &
  hanzicam live /tmp/cam
  hanzicam live /tmp/front /tmp/back`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srcs := make([]*frame.DirSource, 0, len(args))
	defer func() {
		for _, src := range srcs {
			src.Close()
		}
	}()
	for _, dir := range args {
		src, err := frame.WatchDir(dir, a.log)
		if err != nil {
			return err
		}
		srcs = append(srcs, src)
	}

	ctrl, err := a.controller(stderrNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	scanner, err := session.NewLiveScanner(ctrl, srcs[0], session.LiveConfig{
		MinInterval:  a.cfg.Scan.MinInterval,
		PollInterval: a.cfg.Scan.PollInterval,
		Frame:        a.cfg.Scan.LiveOptions(),
	})
	if err != nil {
		return err
	}

	for i, src := range srcs {
		i, src := i, src
		go func() {
			if err := src.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("frame watcher stopped", slog.String("dir", args[i]), slog.Any("error", err))
			}
		}()
	}

	if len(srcs) > 1 {
		go switchOnInput(ctx, cmd.InOrStdin(), len(srcs), func(i int) {
			scanner.SwitchSource(srcs[i])
			fmt.Fprintf(cmd.ErrOrStderr(), "Switched to %s\n", args[i])
		})
	}

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for out := range scanner.Outcomes() {
			if out.Kind != session.Found {
				continue
			}
			text, err := annotate.RenderResult(out.Result, a.cfg.Scan.LiveGroupSize)
			if err != nil {
				a.log.Error("rendering result", slog.Any("error", err))
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
		}
	}()

	if len(srcs) > 1 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Enter: next camera, Ctrl+C: stop)\n", args[0])
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", args[0])
	}
	err = scanner.Run(ctx)
	<-printed

	stats := scanner.Stats()
	attrs := []any{
		slog.Uint64("scans", stats.Accepted),
		slog.Uint64("skipped", stats.Rejected),
	}
	for i, src := range srcs {
		frames := src.Stats()
		attrs = append(attrs, slog.Group(args[i],
			slog.Uint64("frames", frames.Published),
			slog.Uint64("dropped", frames.Dropped),
		))
	}
	a.log.Info("live scan stopped", attrs...)
	return err
}

// switchOnInput advances through n sources, calling switchTo with the next
// index for every line read from r, until r ends or ctx is done.
func switchOnInput(ctx context.Context, r io.Reader, n int, switchTo func(i int)) {
	lines := bufio.NewScanner(r)
	current := 0
	for lines.Scan() {
		if ctx.Err() != nil {
			return
		}
		current = (current + 1) % n
		switchTo(current)
	}
}
