package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Table and column names for the pets table.
const (
	TablePets = "pets"

	ColumnID     = "_id"
	ColumnName   = "name"
	ColumnBreed  = "breed"
	ColumnGender = "gender"
	ColumnWeight = "weight"
)

// AllColumns lists the pets columns in table order.
var AllColumns = []string{
	ColumnID,
	ColumnName,
	ColumnBreed,
	ColumnGender,
	ColumnWeight,
}

// IsColumn reports whether name is a pets column.
func IsColumn(name string) bool {
	for _, c := range AllColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Gender is the enumerated gender of a pet.
type Gender int

// Gender values stored in the gender column.
const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

// Valid reports whether g is one of the enumerated values.
func (g Gender) Valid() bool {
	return g == GenderUnknown || g == GenderMale || g == GenderFemale
}

func (g Gender) String() string {
	switch g {
	case GenderUnknown:
		return "unknown"
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return fmt.Sprintf("gender(%d)", int(g))
	}
}

// ParseGender accepts a gender name (unknown, male, female) or its integer
// value. Integers outside the enumeration parse successfully so that the
// gateway, not the parser, rejects them.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return GenderUnknown, nil
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse gender %q: %w", s, ErrInvalidPayload)
	}
	return Gender(n), nil
}

// Pet is a row of the pets table.
type Pet struct {
	ID     int64  `json:"_id"`
	Name   string `json:"name"`
	Breed  string `json:"breed"`
	Gender Gender `json:"gender"`
	Weight int    `json:"weight"`
}

// Values returns a payload with every mutable field of p present.
func (p Pet) Values() Values {
	return NewValues().
		SetName(p.Name).
		SetBreed(p.Breed).
		SetGender(p.Gender).
		SetWeight(p.Weight)
}

// SeedValues is the placeholder pet inserted by the seed commands.
func SeedValues() Values {
	return NewValues().SetName("Toto").SetBreed("Terrier").SetGender(GenderMale).SetWeight(7)
}
