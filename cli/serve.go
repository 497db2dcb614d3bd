package cli

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeptools/gw-dbconn/conf"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		listen      string
		appRoot     string
		adminSocket string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /ping and /db/health until SIGINT or SIGTERM",
		Long: `Serve the health endpoints, and the admin socket when --admin-socket or
admin_socket in config/.core.json is set, until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if appRoot == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				appRoot = wd
			}
			rootCtx, rootCancel := context.WithCancel(cmd.Context())
			defer rootCancel()

			core := &conf.Core{}
			if err := core.BaseInit(appRoot, rootCtx, rootCancel); err != nil {
				return err
			}
			defer core.ResourceCleanUp()
			if listen != "" {
				core.Listen = listen
			}
			if adminSocket != "" {
				core.AdminSocket = adminSocket
			}
			if opts.configPath != "" {
				core.DBProperties = opts.configPath
			}

			core.PrepareDBProvider()
			if err := core.PrepareWebService(); err != nil {
				return err
			}
			if err := core.PrepareUDSService(); err != nil {
				return err
			}
			if err := core.StartServices(); err != nil {
				return err
			}
			err := core.WaitServicesDone()
			if err != nil {
				log.Printf("[ERROR] %s: %v", core.AppName, err)
				core.StopServices()
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default $"+conf.EnvListen+" or "+conf.DefaultListen+")")
	cmd.Flags().StringVar(&adminSocket, "admin-socket", "", "unix socket for admin commands (db.check, db.conf, db.drivers)")
	cmd.Flags().StringVar(&appRoot, "root", "", "app root holding config/.core.json (default working directory)")
	return cmd
}
