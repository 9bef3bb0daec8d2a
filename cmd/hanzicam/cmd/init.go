package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/hanzicam/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write config.yaml with every setting at its default value into your
config directory. Edit it afterwards; environment variables such as
HANZICAM_LLM_MODEL override the file.

The API key is never written. Set ANTHROPIC_API_KEY or HANZICAM_LLM_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	dir, err := configDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, config.FileName)
	if err := config.Save(path, config.Default(dir), force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w\nUse --force to overwrite", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. export ANTHROPIC_API_KEY=...")
	fmt.Fprintln(out, "  2. Run 'hanzicam scan <image>' to recognize a photo")
	fmt.Fprintln(out, "  3. Run 'hanzicam' for the interactive UI")
	return nil
}
