package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calassist/internal/logging"
	"github.com/teemow/calassist/internal/server"
	"github.com/teemow/calassist/internal/tools/schedule_tools"
)

const serverInstructions = `Schedules events in one preconfigured calendar.
Timestamps are local to the calendar's time zone and use YYYY-MM-DDTHH:MM:SS.`

func newServeCmd() *cobra.Command {
	opts := runtimeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on stdio. It exposes the
schedule_event tool, which accepts the same arguments the assistant sends,
plus schedule_events for batches and calendar_colors.

Logs go to stderr so stdout stays reserved for the protocol. Metrics and
health probes are served only when --metrics-addr is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	addRuntimeFlags(cmd, &opts)

	return cmd
}

func runServe(cmd *cobra.Command, opts runtimeOptions) error {
	shutdownCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := setupRuntime(shutdownCtx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			rt.logger.Warn("shutdown failed", logging.Err(err))
		}
	}()

	serverContext, err := server.NewServerContext(shutdownCtx, rt.adder,
		server.WithMetrics(rt.provider.Metrics()),
		server.WithAuditLogger(rt.audit),
		server.WithLogger(rt.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			rt.logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	health := server.NewHealthChecker(serverContext)
	if err := rt.startMetricsServer(opts.metricsAddr, health); err != nil {
		return err
	}

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	rt.logger.InfoContext(shutdownCtx, "serving MCP on stdio", logging.Calendar(rt.cfg.CalendarID))
	return runStdioServer(shutdownCtx, mcpSrv)
}

// newMCPServer creates the MCP server with every tool registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("calassist", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions(serverInstructions),
	)

	if err := schedule_tools.RegisterScheduleTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register schedule tools: %w", err)
	}
	return mcpSrv, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}
