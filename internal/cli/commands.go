package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/joacominatel/studiodb/internal/database"
)

func newTablesCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), g, func(s *session, _ string) error {
				names, err := s.svc.ListTables(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newDescribeCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), g, func(s *session, _ string) error {
				schema, err := s.svc.DescribeTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				renderSchema(cmd.OutOrStdout(), schema)
				return nil
			})
		},
	}
}

type pageOptions struct {
	page   int
	size   int
	sort   string
	desc   bool
	format string
}

func newPageCommand(g *globals) *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:   "page <table>",
		Short: "Print one page of a table",
		Example: `  studiodb page wp_posts --root ~/Studio/my-site
  studiodb page wp_posts --page 2 --sort post_date --desc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(opts.format); err != nil {
				return err
			}
			dir := database.SortAsc
			if opts.desc {
				dir = database.SortDesc
			}
			req := database.PageRequest{
				Table:         args[0],
				Page:          opts.page,
				PageSize:      opts.size,
				SortColumn:    opts.sort,
				SortDirection: dir,
			}

			return withDatabase(cmd.Context(), g, func(s *session, _ string) error {
				res, err := s.svc.FetchPage(cmd.Context(), req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if err := renderResult(out, res, opts.format); err != nil {
					return err
				}
				if opts.format == formatTable && res.Total != nil {
					size := req.PageSize
					if size <= 0 {
						size = s.svc.PageSize()
					}
					_, _ = fmt.Fprintf(out, "page %d/%d of %s rows\n",
						max(req.Page, 1), res.TotalPages(size), humanize.Comma(*res.Total))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().IntVarP(&opts.size, "size", "n", 0, "rows per page (default from preferences)")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "sort column (default primary key)")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table, csv, md, json")
	return cmd
}

type queryOptions struct {
	input  string
	format string
}

func newQueryCommand(g *globals) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run one SQL statement",
		Long: `Run one SQL statement against the database. SELECT statements print
their rows, anything else prints the number of changed rows.

The statement is read from the argument, from --input, or from stdin when
the argument is "-".`,
		Example: `  studiodb query "SELECT option_name, option_value FROM wp_options LIMIT 5"
  studiodb query --input fix.sql
  echo "SELECT COUNT(*) FROM wp_posts" | studiodb query -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(opts.format); err != nil {
				return err
			}
			sql, err := readStatement(cmd.InOrStdin(), args, opts.input)
			if err != nil {
				return err
			}

			return withDatabase(cmd.Context(), g, func(s *session, _ string) error {
				res, err := s.svc.Execute(cmd.Context(), sql)
				if err != nil {
					return err
				}
				return renderResult(cmd.OutOrStdout(), res, opts.format)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read the statement from a file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table, csv, md, json")
	return cmd
}

var errNoStatement = errors.New("no statement: pass it as an argument, with --input, or on stdin with -")

func readStatement(stdin io.Reader, args []string, input string) (string, error) {
	switch {
	case input != "":
		b, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("read statement: %w", err)
		}
		return string(b), nil
	case len(args) == 1 && args[0] == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read statement: %w", err)
		}
		return string(b), nil
	case len(args) == 1:
		return args[0], nil
	}
	return "", errNoStatement
}

type recordOptions struct {
	set  []string
	null []string
	key  string
}

func (o *recordOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&o.set, "set", nil, "column=value to write (repeatable)")
	cmd.Flags().StringArrayVar(&o.null, "null", nil, "column to set to NULL (repeatable)")
}

// record builds the record from --set and --null.
func (o *recordOptions) record() (database.Record, error) {
	rec := make(database.Record, len(o.set)+len(o.null))
	for _, kv := range o.set {
		col, val, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("invalid --set %q: want column=value", kv)
		}
		rec[strings.TrimSpace(col)] = val
	}
	for _, col := range o.null {
		rec[strings.TrimSpace(col)] = nil
	}
	return rec, nil
}

func newUpdateCommand(g *globals) *cobra.Command {
	opts := &recordOptions{}

	cmd := &cobra.Command{
		Use:   "update <table>",
		Short: "Update the row identified by its key",
		Long: `Update one row. The record must include the key column, which is the
table's primary key unless --key names another column. Every other column
given is written.`,
		Example: `  studiodb update wp_options --set option_id=1 --set option_value=http://localhost:8882
  studiodb update wp_options --key option_name --set option_name=blogname --set option_value="My Site"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.record()
			if err != nil {
				return err
			}
			return withDatabase(cmd.Context(), g, func(s *session, _ string) error {
				n, err := s.svc.UpdateRecord(cmd.Context(), args[0], rec, opts.key)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d row(s) updated\n", n)
				return nil
			})
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.key, "key", "", "key column (default primary key)")
	return cmd
}

func newInsertCommand(g *globals) *cobra.Command {
	opts := &recordOptions{}

	cmd := &cobra.Command{
		Use:     "insert <table>",
		Short:   "Insert a row",
		Example: `  studiodb insert wp_options --set option_name=studiodb_test --set option_value=1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := opts.record()
			if err != nil {
				return err
			}
			return withDatabase(cmd.Context(), g, func(s *session, _ string) error {
				res, err := s.svc.InsertRecord(cmd.Context(), args[0], rec)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "%d row(s) inserted", res.RowsAffected)
				if res.LastInsertID != nil {
					_, _ = fmt.Fprintf(out, ", id %d", *res.LastInsertID)
				}
				_, _ = fmt.Fprintln(out)
				return nil
			})
		},
	}

	opts.bind(cmd)
	return cmd
}

func newInfoCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the database file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), g, func(s *session, _ string) error {
				info, err := s.svc.DatabaseInfo(cmd.Context())
				if err != nil {
					return err
				}
				renderInfo(cmd.OutOrStdout(), info)
				return nil
			})
		},
	}
}

func newRecentCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Manage recently opened installations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recently opened installations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(g, false)
			if err != nil {
				return err
			}
			defer s.close()

			recent := s.svc.RecentInstallations()
			if len(recent) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No recent installations")
				return nil
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Root", "Database", "Opened"})
			for _, inst := range recent {
				opened := ""
				if !inst.OpenedAt.IsZero() {
					opened = humanize.Time(inst.OpenedAt)
				}
				t.AppendRow(table.Row{inst.Name, inst.Root, inst.DBPath, opened})
			}
			t.Render()
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <root>",
		Short: "Forget an installation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(g, false)
			if err != nil {
				return err
			}
			defer s.close()

			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			remaining, err := s.svc.RemoveRecentInstallation(root)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d recent installation(s) left\n", len(remaining))
			return nil
		},
	}

	cmd.AddCommand(list, remove)
	return cmd
}

func newWatchCommand(g *globals) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a line whenever the database changes",
		Long: `Watch the database file, and the journal files next to it, and print a
line for every change made by another program, such as WordPress itself.
Stops on interrupt, or after --count events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withDatabase(ctx, g, func(s *session, path string) error {
				events, unsubscribe := s.svc.Subscribe()
				defer unsubscribe()

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "Watching %s\n", path)
				for seen := 0; count <= 0 || seen < count; seen++ {
					select {
					case <-ctx.Done():
						return nil
					case ev, ok := <-events:
						if !ok {
							return nil
						}
						_, _ = fmt.Fprintf(out, "%s  %-6s %s\n",
							ev.At.Format("15:04:05"), strings.ToLower(ev.Op.String()), filepath.Base(ev.Path))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "stop after this many changes")
	return cmd
}
