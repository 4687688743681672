package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/1broseidon/runeditor/internal/config"
	"github.com/1broseidon/runeditor/internal/logging"
	"github.com/1broseidon/runeditor/internal/mcp"
	"github.com/1broseidon/runeditor/internal/runtimepath"
)

func newMCPCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.

Example:
  claude mcp add runeditor -- runeditor mcp serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCPServe(cmd.Context(), opts)
		},
	})
	return cmd
}

func runMCPServe(ctx context.Context, opts *options) error {
	res, err := opts.load()
	if err != nil {
		return err
	}
	// MCP clients usually hide stderr; keep a log file by default.
	logCfg := *res.Config
	if logCfg.LogFile == "" {
		if path, err := runtimepath.LogPath(); err == nil {
			logCfg.LogFile = path
		}
	}
	log, err := newLogger(&logCfg)
	if err != nil {
		return err
	}
	defer log.Close()

	open := func(ctx context.Context, cfg *config.Config) (mcp.Controller, func(), error) {
		return openControllerFor(ctx, cfg, log)
	}
	server, err := mcp.NewServer(res.Config, open, string(res.Config.Backend), log)
	if err != nil {
		return err
	}
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openControllerFor(ctx context.Context, cfg *config.Config, log *logging.Logger) (mcp.Controller, func(), error) {
	ctrl, release, err := openController(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return ctrl, release, nil
}
