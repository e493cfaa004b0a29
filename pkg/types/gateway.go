package types

import (
	"context"
	"errors"
	"fmt"
)

// Selection is an SQL WHERE fragment with ? placeholders and its arguments.
// The zero Selection matches every row.
type Selection struct {
	Where string
	Args  []any
}

// IsZero reports whether the selection matches every row.
func (s Selection) IsZero() bool {
	return s.Where == "" && len(s.Args) == 0
}

// QueryOptions shapes a Query. Empty Columns selects every column.
// SortOrder is an ORDER BY fragment passed through for collection queries.
type QueryOptions struct {
	Columns   []string
	Selection Selection
	SortOrder string
}

// RowsRejected is the count Update returns when the payload is rejected
// before storage is touched.
const RowsRejected int64 = -1

// Rows is a forward-only cursor over a query result. It holds a database
// connection until Close. Changes delivers change events overlapping the
// originating locator until Close.
type Rows interface {
	Next() bool
	// Scan reads the current row into a Pet. Columns outside the
	// projection keep their zero value.
	Scan() (Pet, error)
	Columns() []string
	Locator() Locator
	Changes() <-chan Change
	Err() error
	Close() error
}

// Subscription delivers change events overlapping a locator.
type Subscription interface {
	Locator() Locator
	Changes() <-chan Change
	Cancel()
}

// Gateway mediates every read and write against the pets store. All
// operations return ErrUnsupportedLocator for a locator of unknown kind and
// ErrGatewayClosed before Initialize or after Close.
type Gateway interface {
	// Initialize opens or creates the database and ensures the schema.
	// Calling it on an open gateway is a no-op.
	Initialize(ctx context.Context) error

	// Query returns the rows addressed by loc. An item locator replaces
	// the selection with its id.
	Query(ctx context.Context, loc Locator, opts QueryOptions) (Rows, error)

	// Insert validates values, writes a new row, and returns its item
	// locator. loc must be the collection locator.
	Insert(ctx context.Context, loc Locator, values Values) (Locator, error)

	// Update validates the present fields and writes them to the selected
	// rows, returning the affected count. A rejected payload returns
	// RowsRejected with an error wrapping ErrInvalidPayload.
	Update(ctx context.Context, loc Locator, values Values, sel Selection) (int64, error)

	// Delete removes the selected rows and returns the affected count.
	Delete(ctx context.Context, loc Locator, sel Selection) (int64, error)

	// Type returns the content type of loc.
	Type(loc Locator) (string, error)

	// Subscribe registers for change events overlapping loc.
	Subscribe(loc Locator) (Subscription, error)

	// Close releases the database handle. Close is idempotent.
	Close() error
}

// Gateway errors.
var (
	ErrUnsupportedLocator = errors.New("unsupported locator")
	ErrInvalidPayload     = errors.New("invalid pet payload")
	ErrEmptyPayload       = fmt.Errorf("payload has no fields: %w", ErrInvalidPayload)
	ErrUnknownColumn      = fmt.Errorf("unknown column: %w", ErrInvalidPayload)
	ErrStorage            = errors.New("storage failure")
	ErrGatewayClosed      = errors.New("gateway is not open")
	ErrSchemaTooNew       = errors.New("database schema is newer than this build")
)

// Collect drains r into a slice and closes it.
func Collect(r Rows) ([]Pet, error) {
	defer r.Close()
	var pets []Pet
	for r.Next() {
		p, err := r.Scan()
		if err != nil {
			return nil, err
		}
		pets = append(pets, p)
	}
	return pets, r.Err()
}
