package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeptools/gw-dbconn/db"
	"github.com/zeptools/gw-dbconn/db/sqldb"
)

func newCheckCmd(opts *options) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Open a connection from the properties file and ping it",
		Long: `Open a connection using the id, pw and url keys of the properties file,
ping it and release it. With --query the statement is run and its rows counted.
The properties file is read again on every run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider := opts.newProvider(opts.configPath)
			return provider.WithConn(ctx, func(conn *sqldb.Conn, scope *db.Scope) error {
				if err := conn.Ping(ctx); err != nil {
					return fmt.Errorf("ping: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "connected: type=%s user=%s\n", conn.DBType(), conn.Conf().User)
				if query == "" {
					return nil
				}
				n, err := countRows(ctx, conn, scope, query)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rows: %d\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "SQL to run after connecting")
	return cmd
}

func countRows(ctx context.Context, conn *sqldb.Conn, scope *db.Scope, query string) (int, error) {
	stmt, err := conn.Prepare(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	scope.Add("stmt", stmt)
	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	scope.Add("rows", rows)
	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}
