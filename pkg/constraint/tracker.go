// Package constraint checks candidate values against column constraints.
// Uniqueness state lives for a single generation run.
package constraint

import (
	"github.com/umputun/wordsql/pkg/schema"
)

// Scope defines how uniqueness is tracked across columns
type Scope int

const (
	// Shared scope keeps one set per constraint kind for all columns,
	// the same value can't pass a unique check in two different unique columns.
	Shared Scope = iota
	// PerColumn scope tracks values separately for each column
	PerColumn
)

// Tracker checks values against column constraints and remembers accepted unique and primary key values.
// Not thread-safe, made for a single run.
type Tracker struct {
	scope      Scope
	unique     map[string]struct{}
	primaryKey map[string]struct{}
}

// NewTracker makes Tracker with empty history
func NewTracker(scope Scope) *Tracker {
	return &Tracker{scope: scope, unique: map[string]struct{}{}, primaryKey: map[string]struct{}{}}
}

// Check returns true if value satisfies column constraint. Accepted unique and primary key values are
// recorded, so the same value will be rejected next time.
func (t *Tracker) Check(col schema.Column, value string) bool {
	if t.scope == PerColumn && (col.Constraint == schema.ConstraintUnique || col.Constraint == schema.ConstraintPrimaryKey) {
		return Check(col.Name+"\x00"+value, col.Constraint, t.unique, t.primaryKey)
	}
	return Check(value, col.Constraint, t.unique, t.primaryKey)
}

// Seen returns number of recorded values for unique or primary key constraint
func (t *Tracker) Seen(kind schema.Constraint) int {
	switch kind {
	case schema.ConstraintUnique:
		return len(t.unique)
	case schema.ConstraintPrimaryKey:
		return len(t.primaryKey)
	}
	return 0
}

// Check returns true if value satisfies the constraint kind. Unique and primary key checks
// consult and update the given sets.
func Check(value string, kind schema.Constraint, unique, primaryKey map[string]struct{}) bool {
	switch kind {
	case schema.ConstraintNotNull:
		return notNull(value)
	case schema.ConstraintUnique:
		return firstSeen(value, unique)
	case schema.ConstraintPrimaryKey:
		return firstSeen(value, primaryKey)
	}
	return true
}

func notNull(s string) bool {
	return s != ""
}

func firstSeen(s string, seen map[string]struct{}) bool {
	if _, ok := seen[s]; ok {
		return false
	}
	seen[s] = struct{}{}
	return true
}
