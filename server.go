package dataverse

import (
	"context"

	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcp/server"
)

// NewServer creates an MCP server exposing the Dataverse toolset.
func NewServer(ctx context.Context, options *Options) (*server.Server, error) {
	service, err := NewService(ctx, options)
	if err != nil {
		return nil, err
	}
	newHandler := protoserver.WithDefaultHandler(ctx, service.Register)
	return server.New(
		server.WithNewHandler(newHandler),
		server.WithImplementation(schema.Implementation{Name: options.Name, Version: options.Version}),
	)
}
