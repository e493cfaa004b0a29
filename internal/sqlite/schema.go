package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/pets/pkg/types"
)

// SchemaVersion is stored in PRAGMA user_version.
const SchemaVersion = 1

const (
	createPets = `CREATE TABLE IF NOT EXISTS pets (
    _id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT,
    breed TEXT,
    gender INTEGER NOT NULL DEFAULT 0,
    weight INTEGER NOT NULL DEFAULT 0
);`

	dropPets = `DROP TABLE IF EXISTS pets;`
)

// migration moves the schema from any older version to SchemaVersion.
type migration struct {
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
}

var (
	// createSchema runs on a fresh database.
	createSchema = migration{
		Description: "create pets table",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, createPets); err != nil {
				return fmt.Errorf("create pets: %w", err)
			}
			return nil
		},
	}

	// recreateSchema runs on an older non-zero version. Existing rows are
	// discarded.
	recreateSchema = migration{
		Description: "recreate pets table",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, dropPets); err != nil {
				return fmt.Errorf("drop pets: %w", err)
			}
			if _, err := tx.ExecContext(ctx, createPets); err != nil {
				return fmt.Errorf("create pets: %w", err)
			}
			return nil
		},
	}
)

// schemaVersion reads PRAGMA user_version.
func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w: %w", types.ErrStorage, err)
	}
	return v, nil
}

// migrate brings db to SchemaVersion. A database written by a newer build
// returns ErrSchemaTooNew and is left untouched.
func migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}

	var m migration
	switch {
	case current == SchemaVersion:
		return nil
	case current > SchemaVersion:
		return fmt.Errorf("%w: version %d, supported %d", types.ErrSchemaTooNew, current, SchemaVersion)
	case current == 0:
		m = createSchema
	default:
		m = recreateSchema
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w: %w", types.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.Up(ctx, tx); err != nil {
		return fmt.Errorf("migrate to version %d: %w: %w", SchemaVersion, types.ErrStorage, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w: %w", types.ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w: %w", types.ErrStorage, err)
	}

	logger.Info("schema migrated", "from", current, "to", SchemaVersion, "migration", m.Description)
	return nil
}
