package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mesh-intelligence/pets/pkg/types"
)

const catalogURI = "pets://pets"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         catalogURI,
		Name:        "Pet Catalog",
		Description: "Every pet in the catalog",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)
}

func (s *Server) handleCatalogResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	pets, err := s.query(ctx, types.Collection(), types.QueryOptions{SortOrder: types.ColumnID + " ASC"})
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	if pets == nil {
		pets = []types.Pet{}
	}

	contentType, err := s.gw.Type(types.Collection())
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(map[string]any{
		"content_type": contentType,
		"count":        len(pets),
		"pets":         pets,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      catalogURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
