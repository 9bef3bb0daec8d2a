package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/f3rmion/hanzicam/internal/annotate"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/history"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent recognitions",
	Long: fmt.Sprintf(`List the %d most recent recognitions, newest first.

Example:
  hanzicam history
  hanzicam history show 1
  hanzicam history clear`, history.MaxHistory),
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <n|id>",
	Short: "Show one entry by list position (1 = newest) or id",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.store.LoadAll()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCHARACTERS\tPINYIN\tWHEN")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, e.Preview, e.PinyinPreview, e.Timestamp.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := findEntry(a.store, args[0])
	if err != nil {
		return err
	}

	text, err := annotate.RenderResult(entry.Result(), a.cfg.Scan.CaptureGroupSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n\n%s", entry.ID, entry.Timestamp.Local().Format(time.DateTime), text)
	return nil
}

// findEntry resolves a 1-based list position or an entry id.
func findEntry(store *history.Store, ref string) (hanzi.HistoryEntry, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		entries, err := store.LoadAll()
		if err != nil {
			return hanzi.HistoryEntry{}, err
		}
		if n >= 1 && n <= len(entries) {
			return entries[n-1], nil
		}
	}

	entry, ok, err := store.Get(ref)
	if err != nil {
		return hanzi.HistoryEntry{}, err
	}
	if !ok {
		return hanzi.HistoryEntry{}, fmt.Errorf("no history entry %q", ref)
	}
	return entry, nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	return session.ClearHistory(a.store, stderrNotifier(cmd.ErrOrStderr()))
}
