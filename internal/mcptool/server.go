// Package mcptool exposes the bundle planner as a Model Context Protocol tool
// so assistants can run optimizations over stdio.
package mcptool

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/bundle-optimizer/internal/bundle"
)

const serverName = "bundle-optimizer"

// Planner runs one optimization for an immutable request.
type Planner interface {
	Plan(ctx context.Context, req bundle.Request) (bundle.Report, error)
}

// NewServer builds an MCP server with the solve tool registered.
func NewServer(planner Planner, logger *zap.Logger, version string) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if version == "" {
		version = "dev"
	}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	mcp.AddTool(server, SolveTool(), SolveHandler(planner, logger))
	return server
}

// Serve runs server on transport until ctx is cancelled or the client disconnects.
func Serve(ctx context.Context, server *mcp.Server, transport mcp.Transport) error {
	err := server.Run(ctx, transport)
	if err != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ServeStdio runs server over the process's stdin and stdout.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return Serve(ctx, server, &mcp.StdioTransport{})
}
