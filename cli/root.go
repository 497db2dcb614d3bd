package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zeptools/gw-dbconn/db/sqldb"
	"github.com/zeptools/gw-dbconn/db/sqldb/impls"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "v0.1.0"

type options struct {
	configPath  string
	newProvider func(confPath string) *sqldb.Provider
}

// NewRootCmd builds the top-level `gwdb` command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{newProvider: sqldb.NewProvider})
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "gwdb",
		Short:         "gwdb - database connection checks and health endpoint",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			impls.RegisterAll()
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"db properties file (default $"+sqldb.EnvConfPath+" or "+sqldb.DefaultConfPath+")")

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newEncryptPWCmd())
	root.AddCommand(newGenKeyCmd())
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newDriversCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// newVersionCmd builds the `version` command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List supported database types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range sqldb.Types() {
				d, _ := sqldb.Lookup(t)
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s driver=%s\n", t, d.DriverName)
			}
		},
	}
}
