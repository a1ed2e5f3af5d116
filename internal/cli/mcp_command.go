package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/temirov/code4lm/internal/services/mcp"
	"github.com/temirov/code4lm/internal/types"
)

const (
	mcpUse              = types.CommandMCP
	mcpShortDescription = "serve scan, render and fetch over HTTP"
	mcpLongDescription  = `Start an HTTP tool server exposing the scan, render and fetch operations.
Request paths are resolved against --path. The server runs until interrupted.`
	addressFlagDescription = "listen address; port 0 selects a free port"
	mcpPathFlagDescription = "project root requests are resolved against"
	mcpListeningFormat     = "MCP server listening on %s\n"
	defaultMCPAddress      = "127.0.0.1:0"
)

// toolServerSettings configures one tool server instance.
type toolServerSettings struct {
	address  string
	rootPath string
}

// createMCPCommand returns the mcp subcommand.
func createMCPCommand(app *application) *cobra.Command {
	var address string
	rootPath := ""

	mcpCommand := &cobra.Command{
		Use:   mcpUse,
		Short: mcpShortDescription,
		Long:  mcpLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			ctx := command.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			signalContext, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			settings := toolServerSettings{
				address:  firstNonEmpty(app.settings.MCP.Address, defaultMCPAddress),
				rootPath: app.resolvePath(firstNonEmpty(app.settings.Merge.Path, rootPath)),
			}
			if command.Flags().Changed(addressFlagName) {
				settings.address = address
			}
			if command.Flags().Changed(pathFlagName) {
				settings.rootPath = app.resolvePath(rootPath)
			}
			return app.startMCPServer(signalContext, command.OutOrStdout(), settings)
		},
	}
	mcpCommand.Flags().StringVar(&address, addressFlagName, defaultMCPAddress, addressFlagDescription)
	mcpCommand.Flags().StringVar(&rootPath, pathFlagName, "", mcpPathFlagDescription)
	return mcpCommand
}

// startMCPServer runs the tool server until ctx is done and reports the bound address on writer.
func (app *application) startMCPServer(ctx context.Context, writer io.Writer, settings toolServerSettings) error {
	server := mcp.New(mcp.Config{
		Address:      settings.address,
		Capabilities: mcpCapabilities(),
		Tools:        app.mcpTools(settings.rootPath),
		Logger:       app.logger,
	})
	return server.Serve(ctx, func(address string) {
		fmt.Fprintf(writer, mcpListeningFormat, address)
	})
}

func mcpCapabilities() []mcp.Capability {
	return []mcp.Capability{
		{Name: types.CommandScan, Description: "List the project tree and the files a merge would include"},
		{Name: types.CommandRender, Description: "Render the merged document of the project"},
		{Name: types.CommandFetch, Description: "Return the contents of explicit files under the project root"},
	}
}
