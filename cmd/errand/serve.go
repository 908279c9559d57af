package main

import (
	"github.com/spf13/cobra"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			return server.Run(cfg)
		},
	}
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (searches ./config and . by default)")
	return serve
}
