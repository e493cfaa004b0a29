// Package sqlite provides the public API for the SQLite pets gateway.
// This package exposes the factory functions while keeping implementation
// details internal.
package sqlite

import (
	"context"

	"github.com/mesh-intelligence/pets/internal/sqlite"
	"github.com/mesh-intelligence/pets/pkg/types"
)

// Options tune a gateway: logger, observer callback and subscription
// buffer size.
type Options = sqlite.Options

// NewGateway creates a gateway for cfg. The gateway is not open; call
// Initialize before any other operation.
//
// Example:
//
//	gw := sqlite.NewGateway(types.Config{DataDir: ".pets-db"}, sqlite.Options{})
//	if err := gw.Initialize(ctx); err != nil {
//	    return err
//	}
//	defer gw.Close()
func NewGateway(cfg types.Config, opts Options) types.Gateway {
	return sqlite.NewGateway(cfg, opts)
}

// Open creates and initializes a gateway.
func Open(ctx context.Context, cfg types.Config, opts Options) (types.Gateway, error) {
	g, err := sqlite.Open(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return g, nil
}
