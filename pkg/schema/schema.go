// Package schema parses column and wordlist specs into the table definition used for generation.
// Column spec is "name:type:constraint", wordlist spec is "column:path:transform".
package schema

import (
	"fmt"
	"log"

	"github.com/go-pkgz/stringutils"
	"github.com/hashicorp/go-multierror"
)

// Schema is a parsed table definition with a wordlist binding for each column
type Schema struct {
	Columns  []Column
	Bindings []Binding
}

// Parse makes Schema from column and wordlist specs. Counts must match, each wordlist
// is bound positionally to a row field. All spec errors are collected and returned together.
func Parse(values, wordlists []string) (*Schema, error) {
	if len(values) != len(wordlists) {
		return nil, fmt.Errorf("%w: %d values, %d wordlists", ErrCountMismatch, len(values), len(wordlists))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no columns defined", ErrMalformed)
	}

	errs := new(multierror.Error)
	res := &Schema{Columns: make([]Column, 0, len(values)), Bindings: make([]Binding, 0, len(wordlists))}
	for _, v := range values {
		col, err := ParseColumn(v)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		res.Columns = append(res.Columns, col)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	if names := res.Names(); len(stringutils.DeDup(names)) != len(names) {
		log.Printf("[WARN] duplicate column names in %v, wordlists bound to the first one", names)
	}

	for _, w := range wordlists {
		b, err := ParseBinding(w, res.Columns)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		res.Bindings = append(res.Bindings, b)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return res, nil
}

// Names returns column names in declaration order
func (s *Schema) Names() []string {
	res := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		res = append(res, c.Name)
	}
	return res
}

// Paths returns wordlist paths in binding order
func (s *Schema) Paths() []string {
	res := make([]string, 0, len(s.Bindings))
	for _, b := range s.Bindings {
		res = append(res, b.Path)
	}
	return res
}
