package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/modal/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List snapshots saved with :w",
	Long: `List snapshots saved with :w, newest first.

Examples:
  modal history
  modal history --limit 5
  modal history show 3f2c9a1e-...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openHistory(cmd, nil)
		if err != nil || store == nil {
			return err
		}
		defer func() { _ = store.Close() }()

		snaps, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), snaps)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the content of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd, nil)
		if err != nil || store == nil {
			return err
		}
		defer func() { _ = store.Close() }()

		snap, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), snap.Content)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of snapshots (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func printHistory(w io.Writer, snaps []history.Snapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots saved yet.")
		return
	}
	t := newTable("ID", "NAME", "LINES", "CHANGES", "SAVED")
	for _, s := range snaps {
		t.Row(s.ID, s.Name, strconv.Itoa(s.Lines), s.Stats.String(), s.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w, t.Render())
}
