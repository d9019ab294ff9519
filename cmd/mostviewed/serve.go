package main

import (
	"github.com/spf13/cobra"

	"mostviewed/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline once, then serve the chart and table over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			return a.serve(cmd)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func (a *app) serve(cmd *cobra.Command) error {
	// 1. Refresh the store
	p, st := a.newPipeline()

	result, err := p.Run(cmd.Context())
	a.progress.Clear()

	if err != nil {
		if cmd.Context().Err() != nil {
			return err
		}

		a.log.Warn("⚠️  Run finished with errors, serving what the store holds", "error", err)
	}

	a.log.Info("📊 " + result.Summary())

	// 2. Serve the display
	return server.New(a.cfg, st, a.log, result.Notices).Start(cmd.Context())
}
