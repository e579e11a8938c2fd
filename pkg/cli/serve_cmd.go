package cli

import (
	"context"
	"errors"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/reportsmith/reportsmith/pkg/smith"
	"github.com/spf13/cobra"
)

// NewServeCmd constructs the `serve` subcommand. It speaks MCP over
// stdio, so logs must stay on stderr or in --log-file; stdout belongs to
// the protocol.
func NewServeCmd(deps *Deps) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the report tools to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lg := mylog.LoggerFromContext(ctx)

			if watch {
				go func() {
					if err := smith.Watch(ctx, deps.Store); err != nil && !errors.Is(err, context.Canceled) {
						lg.Warn("report watcher stopped", "err", err)
					}
				}()
			}

			lg.Info("serving report tools over stdio",
				"root", deps.Store.Root(),
				"reports", len(deps.Store.Names()),
				"watch", watch,
			)
			server := smith.NewMCPServer(deps.Store, Version)
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload reports when their files change on disk")

	return cmd
}
