package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Constraint defines the integrity constraint attached to a column
type Constraint int

// supported constraints
const (
	ConstraintNone Constraint = iota
	ConstraintNotNull
	ConstraintUnique
	ConstraintPrimaryKey
)

var constraintNames = map[Constraint]string{
	ConstraintNone:       "",
	ConstraintNotNull:    "not null",
	ConstraintUnique:     "unique",
	ConstraintPrimaryKey: "primary key",
}

// errors returned by parsers, use errors.Is to check
var (
	ErrMalformed            = errors.New("malformed spec")
	ErrConstraintNotAllowed = errors.New("constraint not allowed")
	ErrTransformNotAllowed  = errors.New("transformation not allowed")
	ErrUnknownColumn        = errors.New("invalid value in wordlist")
	ErrCountMismatch        = errors.New("need a wordlist for each value and vice versa")
)

// String returns constraint keyword as used in column spec, empty for ConstraintNone
func (c Constraint) String() string {
	return constraintNames[c]
}

// UnmarshalText parses constraint keyword, case-insensitive
func (c *Constraint) UnmarshalText(text []byte) error {
	for k, v := range constraintNames {
		if strings.ToLower(string(text)) == v {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrConstraintNotAllowed, string(text))
}

// Column defines a single column of the generated table
type Column struct {
	Name       string
	DataType   string
	Constraint Constraint
}

// ParseColumn makes Column from "name:type:constraint" spec.
// Constraint part is everything after the second colon and may be empty.
func ParseColumn(spec string) (Column, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Column{}, fmt.Errorf("%w: column %q, expected name:type:constraint", ErrMalformed, spec)
	}

	var cons Constraint
	if err := cons.UnmarshalText([]byte(parts[2])); err != nil {
		return Column{}, fmt.Errorf("column %q: %w", parts[0], err)
	}
	return Column{Name: parts[0], DataType: parts[1], Constraint: cons}, nil
}
