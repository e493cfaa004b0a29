package types

import (
	"time"

	"github.com/google/uuid"
)

// Op names the mutation that produced a Change.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change is emitted after a successful mutation that affected at least one
// row. Locator is the locator the caller passed in, not the rows touched.
type Change struct {
	ID      uuid.UUID `json:"id"`
	Locator Locator   `json:"locator"`
	Op      Op        `json:"op"`
	Rows    int64     `json:"rows"`
	At      time.Time `json:"at"`
}

// NewChange stamps a change with a UUID v7 and the current time.
func NewChange(loc Locator, op Op, rows int64) Change {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Change{
		ID:      id,
		Locator: loc,
		Op:      op,
		Rows:    rows,
		At:      time.Now().UTC(),
	}
}

// Observer receives changes synchronously on the mutating goroutine, after
// the gateway has released its lock. A closed gateway delivers nothing.
type Observer func(Change)
