package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pets/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on stdin/stdout.

AVAILABLE TOOLS:

  list_pets         List pets, with optional filter and sort
  get_pet           Get one pet by id
  add_pet           Add a pet
  update_pet        Change fields of a pet
  delete_pet        Delete a pet by id
  delete_all_pets   Delete every pet (confirm=true)
  seed_pets         Insert the sample pet

AVAILABLE RESOURCES:

  pets://pets       The whole catalog as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gw, err := a.openGateway(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			server, err := mcp.NewServer(gw, Version)
			if err != nil {
				return sysError(err)
			}

			a.logger.Info("mcp server starting", "data_dir", a.dataDir)
			if err := server.Serve(ctx); err != nil && ctx.Err() != context.Canceled {
				return sysError(err)
			}
			return nil
		},
	}
}
