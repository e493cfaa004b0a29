package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/pets/pkg/types"
)

// Query returns the rows addressed by loc. The returned Rows holds a
// connection and a change subscription until Close.
func (g *Gateway) Query(ctx context.Context, loc types.Locator, opts types.QueryOptions) (types.Rows, error) {
	t, err := resolve(loc, opts.Selection)
	if err != nil {
		return nil, err
	}
	cols, err := projection(opts.Columns)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}

	query := "SELECT " + strings.Join(cols, ", ") + " FROM " + t.table + t.whereClause()
	if !t.item && strings.TrimSpace(opts.SortOrder) != "" {
		query += " ORDER BY " + opts.SortOrder
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.open {
		return nil, types.ErrGatewayClosed
	}

	rows, err := g.db.QueryContext(ctx, query, t.args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w: %w", loc, types.ErrStorage, err)
	}
	return newRows(rows, cols, loc, g.hub.Subscribe(loc)), nil
}

// Insert validates values and writes a new pet. loc must address the
// collection; the item locator of the new row is returned.
func (g *Gateway) Insert(ctx context.Context, loc types.Locator, values types.Values) (types.Locator, error) {
	if !loc.IsCollection() {
		return types.Locator{}, fmt.Errorf("insert into %s: %w", loc, types.ErrUnsupportedLocator)
	}
	if err := g.validate.Insert(values); err != nil {
		return types.Locator{}, fmt.Errorf("insert into %s: %w", loc, err)
	}
	if !values.Has(types.ColumnBreed) {
		g.logger.Debug("pet inserted without breed", "name", *values.Name)
	}

	cols, args := values.Columns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := "INSERT INTO " + types.TablePets + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"

	id, err := g.insert(ctx, query, args)
	if err != nil {
		return types.Locator{}, fmt.Errorf("insert into %s: %w", loc, err)
	}

	g.notify(loc, types.OpInsert, 1)
	return loc.WithID(id), nil
}

// Update writes the present fields of values to the rows addressed by loc
// and sel. A rejected payload returns RowsRejected without touching storage.
func (g *Gateway) Update(ctx context.Context, loc types.Locator, values types.Values, sel types.Selection) (int64, error) {
	t, err := resolve(loc, sel)
	if err != nil {
		return 0, err
	}
	if err := g.validate.Update(values); err != nil {
		return types.RowsRejected, fmt.Errorf("update %s: %w", loc, err)
	}

	cols, args := values.Columns()
	assignments := make([]string, len(cols))
	for i, c := range cols {
		assignments[i] = c + " = ?"
	}
	query := "UPDATE " + t.table + " SET " + strings.Join(assignments, ", ") + t.whereClause()
	args = append(args, t.args...)

	n, err := g.exec(ctx, query, args)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", loc, err)
	}
	if n > 0 {
		g.notify(loc, types.OpUpdate, n)
	}
	return n, nil
}

// Delete removes the rows addressed by loc and sel. No match is a zero
// count, not an error.
func (g *Gateway) Delete(ctx context.Context, loc types.Locator, sel types.Selection) (int64, error) {
	t, err := resolve(loc, sel)
	if err != nil {
		return 0, err
	}

	if loc.IsCollection() && sel.IsZero() {
		g.logger.Info("deleting every pet")
	}

	n, err := g.exec(ctx, "DELETE FROM "+t.table+t.whereClause(), t.args)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", loc, err)
	}
	if n > 0 {
		g.notify(loc, types.OpDelete, n)
	}
	return n, nil
}

// exec runs a statement and returns the affected row count.
func (g *Gateway) exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := g.run(ctx, query, args)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrStorage, err)
	}
	return n, nil
}

// insert runs an INSERT and returns the new row id.
func (g *Gateway) insert(ctx context.Context, query string, args []any) (int64, error) {
	res, err := g.run(ctx, query, args)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrStorage, err)
	}
	return id, nil
}

func (g *Gateway) run(ctx context.Context, query string, args []any) (sql.Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.open {
		return nil, types.ErrGatewayClosed
	}
	res, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStorage, err)
	}
	return res, nil
}
