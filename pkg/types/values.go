package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Values is a mutation payload for the pets table. A nil field is absent and
// is neither written nor validated on update.
type Values struct {
	Name   *string
	Breed  *string
	Gender *Gender
	Weight *int
}

// NewValues returns an empty payload.
func NewValues() Values {
	return Values{}
}

// SetName returns a copy of v with name present.
func (v Values) SetName(name string) Values {
	v.Name = &name
	return v
}

// SetBreed returns a copy of v with breed present.
func (v Values) SetBreed(breed string) Values {
	v.Breed = &breed
	return v
}

// SetGender returns a copy of v with gender present.
func (v Values) SetGender(g Gender) Values {
	v.Gender = &g
	return v
}

// SetWeight returns a copy of v with weight present.
func (v Values) SetWeight(w int) Values {
	v.Weight = &w
	return v
}

// Len returns the number of present fields.
func (v Values) Len() int {
	n := 0
	if v.Name != nil {
		n++
	}
	if v.Breed != nil {
		n++
	}
	if v.Gender != nil {
		n++
	}
	if v.Weight != nil {
		n++
	}
	return n
}

// Has reports whether the named column is present.
func (v Values) Has(column string) bool {
	switch column {
	case ColumnName:
		return v.Name != nil
	case ColumnBreed:
		return v.Breed != nil
	case ColumnGender:
		return v.Gender != nil
	case ColumnWeight:
		return v.Weight != nil
	default:
		return false
	}
}

// Columns returns the present columns and their values in table order,
// ready to bind into an INSERT or UPDATE statement.
func (v Values) Columns() ([]string, []any) {
	var cols []string
	var args []any
	if v.Name != nil {
		cols = append(cols, ColumnName)
		args = append(args, *v.Name)
	}
	if v.Breed != nil {
		cols = append(cols, ColumnBreed)
		args = append(args, *v.Breed)
	}
	if v.Gender != nil {
		cols = append(cols, ColumnGender)
		args = append(args, int64(*v.Gender))
	}
	if v.Weight != nil {
		cols = append(cols, ColumnWeight)
		args = append(args, int64(*v.Weight))
	}
	return cols, args
}

// MarshalJSON encodes only the present fields.
func (v Values) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, v.Len())
	if v.Name != nil {
		m[ColumnName] = *v.Name
	}
	if v.Breed != nil {
		m[ColumnBreed] = *v.Breed
	}
	if v.Gender != nil {
		m[ColumnGender] = int(*v.Gender)
	}
	if v.Weight != nil {
		m[ColumnWeight] = *v.Weight
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a column-keyed object through ValuesFromMap.
func (v *Values) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode values: %w", err)
	}
	parsed, err := ValuesFromMap(m)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ValuesFromMap builds a payload from column-keyed generic input such as
// decoded JSON. Unknown columns (including _id, which is store-assigned)
// and values of the wrong type return an error wrapping ErrInvalidPayload.
// A nil map value is treated as absent.
func ValuesFromMap(m map[string]any) (Values, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var v Values
	for _, k := range keys {
		raw := m[k]
		if raw == nil {
			continue
		}
		switch k {
		case ColumnName, ColumnBreed:
			s, ok := raw.(string)
			if !ok {
				return Values{}, fmt.Errorf("column %q: want text, got %T: %w", k, raw, ErrInvalidPayload)
			}
			if k == ColumnName {
				v = v.SetName(s)
			} else {
				v = v.SetBreed(s)
			}
		case ColumnGender, ColumnWeight:
			n, ok := toInt(raw)
			if !ok {
				return Values{}, fmt.Errorf("column %q: want integer, got %v: %w", k, raw, ErrInvalidPayload)
			}
			if k == ColumnGender {
				v = v.SetGender(Gender(n))
			} else {
				v = v.SetWeight(n)
			}
		default:
			return Values{}, fmt.Errorf("%w: %q", ErrUnknownColumn, k)
		}
	}
	return v, nil
}

// toInt converts JSON-decoded and Go integer types to int. Floats are
// accepted only when integral.
func toInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case Gender:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
