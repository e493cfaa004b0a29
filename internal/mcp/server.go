// Package mcp exposes the pets gateway as Model Context Protocol tools and
// resources over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mesh-intelligence/pets/pkg/types"
)

// Server wraps the MCP server with gateway access.
type Server struct {
	mcpServer *mcp.Server
	gw        types.Gateway
}

// NewServer creates an MCP server over an open gateway. The caller keeps
// ownership of gw and closes it after Serve returns.
func NewServer(gw types.Gateway, version string) (*Server, error) {
	if gw == nil {
		return nil, errors.New("mcp: nil gateway")
	}

	s := &Server{gw: gw}
	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: "pets", Version: version}, &mcp.ServerOptions{
		SubscribeHandler:   s.handleSubscribe,
		UnsubscribeHandler: s.handleUnsubscribe,
	})

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve runs the server on stdin/stdout until ctx is cancelled or the
// client disconnects. Catalog changes are announced to clients subscribed
// to the catalog resource.
func (s *Server) Serve(ctx context.Context) error {
	sub, err := s.gw.Subscribe(types.Collection())
	if err != nil {
		return fmt.Errorf("subscribe to catalog: %w", err)
	}
	defer sub.Cancel()

	go s.watchChanges(ctx, sub.Changes(), s.resourceUpdated)

	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// watchChanges calls updated with the catalog URI for every change until
// changes closes or ctx is done.
func (s *Server) watchChanges(ctx context.Context, changes <-chan types.Change, updated func(context.Context, string) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			// A failed notification only affects that client.
			_ = updated(ctx, catalogURI)
		}
	}
}

func (s *Server) resourceUpdated(ctx context.Context, uri string) error {
	return s.mcpServer.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri})
}

func (s *Server) handleSubscribe(ctx context.Context, req *mcp.SubscribeRequest) error {
	if req.Params.URI != catalogURI {
		return fmt.Errorf("unknown resource %q", req.Params.URI)
	}
	return nil
}

func (s *Server) handleUnsubscribe(ctx context.Context, req *mcp.UnsubscribeRequest) error {
	return nil
}
