// Package sqlite implements the pets Storage Gateway on an embedded SQLite
// database. Every read and write is addressed by a types.Locator; mutations
// are validated before touching storage and announce themselves on a
// change hub once they succeed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pets/internal/notify"
	"github.com/mesh-intelligence/pets/internal/validate"
	"github.com/mesh-intelligence/pets/pkg/types"
)

// Pragmas applied to every pooled connection through the DSN.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
}

// Options tune a Gateway. The zero value logs nowhere and has no observer.
type Options struct {
	Logger *slog.Logger

	// Observer is called after every successful mutation that changed at
	// least one row, in addition to hub subscribers.
	Observer types.Observer

	// Buffer is the per-subscription channel capacity; below 1 uses
	// notify.DefaultBuffer.
	Buffer int
}

// Gateway implements types.Gateway. It owns the database handle; callers
// share one Gateway and release it with Close.
type Gateway struct {
	mu       sync.RWMutex
	open     bool
	config   types.Config
	db       *sql.DB
	hub      *notify.Hub
	validate *validate.Validator
	logger   *slog.Logger
	observer types.Observer
	buffer   int
}

var _ types.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway for cfg. The gateway is not open; call
// Initialize before any other operation.
func NewGateway(cfg types.Config, opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{
		config:   cfg,
		validate: validate.New(),
		logger:   logger,
		observer: opts.Observer,
		buffer:   opts.Buffer,
	}
}

// Open creates a gateway and initializes it.
func Open(ctx context.Context, cfg types.Config, opts Options) (*Gateway, error) {
	g := NewGateway(cfg, opts)
	if err := g.Initialize(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// Initialize creates the data directory, opens the database and brings the
// schema to the current version. It is a no-op on an open gateway. A
// gateway closed with Close may be initialized again.
func (g *Gateway) Initialize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.open {
		return nil
	}

	if err := g.config.Validate(); err != nil {
		return err
	}

	dataDir := g.config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w: %w", dataDir, types.ErrStorage, err)
	}

	dbPath := g.config.DBPath()
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", dbPath, types.ErrStorage, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("open %s: %w: %w", dbPath, types.ErrStorage, err)
	}

	if err := migrate(ctx, db, g.logger); err != nil {
		db.Close()
		return err
	}

	g.db = db
	g.hub = notify.NewHub(g.buffer)
	g.open = true
	g.logger.Debug("gateway open", "path", dbPath)
	return nil
}

// Close cancels every subscription and releases the database handle.
// Close is idempotent.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.open {
		return nil
	}

	if n := g.hub.Len(); n > 0 {
		g.logger.Debug("closing subscriptions", "count", n)
	}
	g.hub.Close()
	g.open = false
	db := g.db
	g.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w: %w", types.ErrStorage, err)
	}
	return nil
}

// Type returns the content type of loc.
func (g *Gateway) Type(loc types.Locator) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.open {
		return "", types.ErrGatewayClosed
	}
	return types.ContentType(loc)
}

// Subscribe registers for change events overlapping loc.
func (g *Gateway) Subscribe(loc types.Locator) (types.Subscription, error) {
	if loc.Kind() == types.KindUnknown {
		return nil, fmt.Errorf("subscribe %s: %w", loc, types.ErrUnsupportedLocator)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.open {
		return nil, types.ErrGatewayClosed
	}
	return g.hub.Subscribe(loc), nil
}

// notify publishes a change to the hub and the observer. Callers must not
// hold g.mu so observers may call back into the gateway.
func (g *Gateway) notify(loc types.Locator, op types.Op, rows int64) {
	g.mu.RLock()
	hub := g.hub
	open := g.open
	g.mu.RUnlock()

	// A Close that won the race with the mutation ends delivery.
	if !open {
		return
	}

	change := types.NewChange(loc, op, rows)
	delivered := hub.Publish(change)
	g.logger.Debug("change published", "locator", loc.String(), "op", string(op), "rows", rows, "subscribers", delivered)
	if g.observer != nil {
		g.observer(change)
	}
}

// uriPath escapes the characters SQLite treats specially in a file: URI
// path. SQLite percent-decodes the path before opening it.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// dsn builds a modernc.org/sqlite data source name for path with pragmas.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + uriPath.Replace(path) + "?" + q.Encode()
}
