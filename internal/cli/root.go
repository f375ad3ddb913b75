// Package cli provides the studiodb command line: the interactive browser and
// scriptable subcommands over the same service.
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joacominatel/studiodb/internal/tui"
)

// Version is set at build time.
var Version = "0.1.0"

// globals are the persistent flags shared by every command.
type globals struct {
	root      string
	db        string
	readOnly  bool
	verbose   bool
	configDir string
}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "studiodb [root]",
		Short: "Browse and edit the database of a WordPress Studio site",
		Long: `studiodb opens the SQLite database of a WordPress Studio installation
(wp-content/database/.ht.sqlite under the site root) and lets you browse
tables, run SQL and edit records.

Without a subcommand it starts the interactive browser.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(cmd, g, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.root, "root", "", "WordPress installation root")
	flags.StringVar(&g.db, "db", "", "database file (overrides --root)")
	flags.BoolVar(&g.readOnly, "readonly", false, "open the database read-only")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")
	flags.StringVar(&g.configDir, "config-dir", "", "configuration directory (default ~/.studiodb)")

	rootCmd.AddCommand(
		newTablesCommand(g),
		newDescribeCommand(g),
		newPageCommand(g),
		newQueryCommand(g),
		newUpdateCommand(g),
		newInsertCommand(g),
		newInfoCommand(g),
		newRecentCommand(g),
		newWatchCommand(g),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func runBrowser(cmd *cobra.Command, g *globals, args []string) error {
	s, err := newSession(g, true)
	if err != nil {
		return err
	}
	defer s.close()

	target := g.db
	if target == "" {
		target = g.root
	}
	if len(args) > 0 {
		target = args[0]
	}

	model := tui.NewModel(s.svc, target)
	defer model.Shutdown()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
