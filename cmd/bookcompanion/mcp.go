package main

import (
	"context"
	"errors"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/bookcompanion/internal/api"
	"github.com/matiasleandrokruk/bookcompanion/internal/server"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the advice and translation tools over MCP (stdio)",
		Long: `Serve advise_chapter, translate_texts and translate_chapter as MCP tools
on stdin/stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			app, err := server.NewApp(cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			stdio := mcpserver.NewStdioServer(api.NewMCPServer(app.MCPDeps()))
			log.Info("MCP server started (stdio transport)")
			err = stdio.Listen(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
