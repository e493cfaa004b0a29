package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/pets/pkg/types"
)

// target is a resolved locator: the table and the WHERE clause that
// restricts an operation to the addressed rows.
type target struct {
	table string
	where string
	args  []any
	item  bool
}

// resolve matches the locator variant. An item overrides sel with its id; a
// collection passes sel through.
func resolve(loc types.Locator, sel types.Selection) (target, error) {
	switch loc.Kind() {
	case types.KindItem:
		return target{
			table: types.TablePets,
			where: types.ColumnID + " = ?",
			args:  []any{loc.ID()},
			item:  true,
		}, nil
	case types.KindCollection:
		return target{
			table: types.TablePets,
			where: strings.TrimSpace(sel.Where),
			args:  sel.Args,
		}, nil
	default:
		return target{}, fmt.Errorf("resolve %s: %w", loc, types.ErrUnsupportedLocator)
	}
}

// whereClause returns " WHERE ..." or an empty string.
func (t target) whereClause() string {
	if t.where == "" {
		return ""
	}
	return " WHERE " + t.where
}

// projection validates columns against the schema. Empty selects all.
func projection(columns []string) ([]string, error) {
	if len(columns) == 0 {
		return append([]string(nil), types.AllColumns...), nil
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !types.IsColumn(c) {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownColumn, c)
		}
		out = append(out, c)
	}
	return out, nil
}
