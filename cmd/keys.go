package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zjrosen/modal/internal/config"
	"github.com/zjrosen/modal/internal/vim"
)

var listHandlers bool

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the effective keymap",
	Long: `Print the default bindings with the vim.keymap remaps from the config
file applied.

Examples:
  # Show every binding
  modal keys

  # List the handler names accepted in vim.keymap
  modal keys --handlers

  # Bind Q to the next-word motion, then remove it again
  modal keys set Q motion_word_forward
  modal keys unset Q`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if listHandlers {
			printHandlers(cmd.OutOrStdout())
			return nil
		}
		km, err := config.BuildKeymap(cfg.Vim)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		printKeymap(cmd.OutOrStdout(), km)
		return nil
	},
}

var keysSetCmd = &cobra.Command{
	Use:   "set <keys> <handler>",
	Short: "Bind keys to a handler in the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setKey(configPath(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", args[0], args[1], configPath())
		return nil
	},
}

var keysUnsetCmd = &cobra.Command{
	Use:   "unset <keys>",
	Short: "Remove a keymap entry from the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RemoveKeymapEntry(configPath(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s restored to default (%s)\n", args[0], configPath())
		return nil
	},
}

func init() {
	keysCmd.Flags().BoolVar(&listHandlers, "handlers", false, "list handler names instead of bindings")
	keysCmd.AddCommand(keysSetCmd, keysUnsetCmd)
	rootCmd.AddCommand(keysCmd)
}

// setKey validates the handler before writing it, so a typo never reaches
// the config file.
func setKey(path, keys, handler string) error {
	if strings.TrimSpace(keys) == "" {
		return fmt.Errorf("%w: empty key sequence", config.ErrInvalidConfig)
	}
	if handler != "nop" {
		if _, err := vim.ParseHandler(handler); err != nil {
			return err
		}
	}
	return config.SaveKeymapEntry(path, keys, handler)
}

func printKeymap(w io.Writer, km *vim.Keymap) {
	t := newTable("KEYS", "HANDLER", "KIND", "DESCRIPTION")
	for _, b := range km.Bindings() {
		t.Row(b.Keys, b.Name, b.Kind.String(), b.Desc)
	}
	for _, b := range km.VisualBindings() {
		t.Row(b.Keys, b.Name, "visual "+b.Kind.String(), b.Desc)
	}
	fmt.Fprintln(w, t.Render())
}

func printHandlers(w io.Writer) {
	for _, name := range vim.HandlerNames() {
		fmt.Fprintln(w, name)
	}
	fmt.Fprintln(w, "nop")
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
}
