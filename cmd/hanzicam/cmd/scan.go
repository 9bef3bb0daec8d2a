package cmd

import (
	"fmt"
	"time"

	"github.com/f3rmion/hanzicam/internal/annotate"
	"github.com/f3rmion/hanzicam/internal/frame"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Recognize the Chinese characters in one image",
	Long: `Send one image to the recognition service and print each recognized
character with its pinyin and meaning, followed by the translation.

Supported formats: JPEG, PNG, WebP, BMP.

Example:
  hanzicam scan menu.jpg
  hanzicam scan sign.png --padding 0.1 --height 0.3
  hanzicam scan menu.jpg --save ~/hanzi-scans`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Float64("padding", 0, "crop this fraction from the left and right edges")
	scanCmd.Flags().Float64("height", 0, "keep only a centered band of this fraction of the height (0 = full)")
	scanCmd.Flags().Int("quality", 0, "JPEG quality 1-100 (default from config)")
	scanCmd.Flags().String("save", "", "save the sent frame and the annotated text into this directory")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	opts := a.cfg.Scan.CaptureOptions()
	opts.Region.Padding, _ = cmd.Flags().GetFloat64("padding")
	opts.Region.Height, _ = cmd.Flags().GetFloat64("height")
	if cmd.Flags().Changed("quality") {
		opts.Quality, _ = cmd.Flags().GetInt("quality")
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	ctrl, err := a.controller(stderrNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	img, err := frame.FileSource{Path: args[0]}.Snapshot(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out, err := ctrl.Capture(cmd.Context(), img)
	if err != nil {
		return err
	}

	if out.Kind == session.Failed {
		return fmt.Errorf("%w: %w", errReported, out.Err)
	}

	var text string
	if out.Kind == session.Found {
		text, err = annotate.RenderResult(out.Result, a.cfg.Scan.CaptureGroupSize)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
	}

	if dir, _ := cmd.Flags().GetString("save"); dir != "" {
		path, err := frame.Save(dir, img, text, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Image saved to %s\n", path)
	}
	return nil
}
