package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/pets/pkg/types"
)

// rows implements types.Rows over *sql.Rows.
type rows struct {
	rows    *sql.Rows
	columns []string
	loc     types.Locator
	sub     types.Subscription
	once    sync.Once
}

var _ types.Rows = (*rows)(nil)

func newRows(r *sql.Rows, columns []string, loc types.Locator, sub types.Subscription) *rows {
	return &rows{rows: r, columns: columns, loc: loc, sub: sub}
}

func (r *rows) Next() bool { return r.rows.Next() }

// Scan reads the current row. Columns outside the projection keep their
// zero value; NULL text reads as the empty string.
func (r *rows) Scan() (types.Pet, error) {
	var (
		p      types.Pet
		name   sql.NullString
		breed  sql.NullString
		gender int64
		weight int64
	)
	dest := make([]any, len(r.columns))
	for i, c := range r.columns {
		switch c {
		case types.ColumnID:
			dest[i] = &p.ID
		case types.ColumnName:
			dest[i] = &name
		case types.ColumnBreed:
			dest[i] = &breed
		case types.ColumnGender:
			dest[i] = &gender
		case types.ColumnWeight:
			dest[i] = &weight
		default:
			return types.Pet{}, fmt.Errorf("%w: %q", types.ErrUnknownColumn, c)
		}
	}
	if err := r.rows.Scan(dest...); err != nil {
		return types.Pet{}, fmt.Errorf("scan %s: %w: %w", r.loc, types.ErrStorage, err)
	}
	p.Name = name.String
	p.Breed = breed.String
	p.Gender = types.Gender(gender)
	p.Weight = int(weight)
	return p, nil
}

func (r *rows) Columns() []string {
	return append([]string(nil), r.columns...)
}

func (r *rows) Locator() types.Locator { return r.loc }

// Changes delivers events overlapping the queried locator until Close.
func (r *rows) Changes() <-chan types.Change { return r.sub.Changes() }

func (r *rows) Err() error {
	if err := r.rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrStorage, err)
	}
	return nil
}

// Close releases the cursor and the subscription. Close is idempotent.
func (r *rows) Close() error {
	var err error
	r.once.Do(func() {
		r.sub.Cancel()
		err = r.rows.Close()
	})
	return err
}
