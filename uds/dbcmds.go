package uds

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zeptools/gw-dbconn/db"
	"github.com/zeptools/gw-dbconn/db/sqldb"
)

// DBCmdMap returns the admin commands backed by p.
// Every command reloads the properties file.
func DBCmdMap(p *sqldb.Provider) map[string]CmdHnd {
	return map[string]CmdHnd{
		"db.check": {
			Desc: "connect, ping and release",
			Fn: func(ctx context.Context, args []string, w io.Writer) error {
				return p.WithConn(ctx, func(conn *sqldb.Conn, _ *db.Scope) error {
					if err := conn.Ping(ctx); err != nil {
						return err
					}
					_, err := fmt.Fprintf(w, "ok type=%s user=%s\n", conn.DBType(), conn.Conf().User)
					return err
				})
			},
		},
		"db.conf": {
			Desc: "show the loaded connection settings, password hidden",
			Fn: func(ctx context.Context, args []string, w io.Writer) error {
				conf, err := sqldb.LoadConf(p.ConfPath)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "%s (%s)\n", conf, p.ConfPath)
				return err
			},
		},
		"db.drivers": {
			Desc: "list supported database types",
			Fn: func(ctx context.Context, args []string, w io.Writer) error {
				_, err := fmt.Fprintln(w, strings.Join(sqldb.Types(), " "))
				return err
			},
		},
	}
}
