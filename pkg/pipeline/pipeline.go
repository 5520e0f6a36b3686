// Package pipeline assembles rows from wordlists read in lock-step.
//
// The first source drives the run. Each driver line is checked against its column constraint, and only
// if it passes one line is taken from every other source. A row with any rejected field is dropped
// as a whole, lines already taken for it are not returned back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/umputun/wordsql/pkg/schema"
	"github.com/umputun/wordsql/pkg/transform"
)

// ErrSourceExhausted returned when a non-driver wordlist ends before the driver one
var ErrSourceExhausted = errors.New("wordlist exhausted")

// Checker checks value against column constraint
type Checker interface {
	Check(col schema.Column, value string) bool
}

// Row is an accepted row with transformed values in binding order
type Row struct {
	Line   int // driver line number, 1-based
	Values []string
}

// Rejection describes a dropped row
type Rejection struct {
	Line   int // driver line number, 1-based
	Column schema.Column
	Value  string
}

// Stats holds counters of a pipeline run
type Stats struct {
	Lines    int // lines read from the driver
	Accepted int
	Rejected int
}

// Pipeline makes rows from wordlist sources according to bindings
type Pipeline struct {
	Bindings []schema.Binding
	Checker  Checker
	OnReject func(Rejection) // optional, called for each dropped row

	stats Stats
}

// Stats returns counters of the last run
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Rows returns a sequence of accepted rows. Sources must follow the order of bindings.
// Iteration stops with an error on read failure, context cancellation or when a non-driver source
// has no line for an accepted driver line.
func (p *Pipeline) Rows(ctx context.Context, sources []Source) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		p.stats = Stats{}
		if len(sources) != len(p.Bindings) {
			yield(Row{}, fmt.Errorf("got %d sources for %d wordlists", len(sources), len(p.Bindings)))
			return
		}
		if len(sources) == 0 {
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(Row{}, err)
				return
			}

			line, err := sources[0].Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Row{}, fmt.Errorf("can't read %s: %w", p.Bindings[0].Path, err))
				return
			}
			p.stats.Lines++

			row, err := p.assemble(line, sources)
			if err != nil {
				yield(Row{}, err)
				return
			}
			if row == nil {
				continue
			}
			p.stats.Accepted++
			if !yield(*row, nil) {
				return
			}
		}
	}
}

// assemble takes driver line and the next line from every other source, returns nil row
// if any field rejected.
func (p *Pipeline) assemble(driverLine string, sources []Source) (*Row, error) {
	raw := make([]string, len(sources))
	raw[0] = driverLine
	if !p.check(0, driverLine) {
		return nil, nil
	}

	for k := 1; k < len(sources); k++ {
		line, err := sources[k].Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s has no line for driver line %d", ErrSourceExhausted, p.Bindings[k].Path, p.stats.Lines)
		}
		if err != nil {
			return nil, fmt.Errorf("can't read %s: %w", p.Bindings[k].Path, err)
		}
		if !p.check(k, line) {
			return nil, nil
		}
		raw[k] = line
	}

	res := &Row{Line: p.stats.Lines, Values: make([]string, len(raw))}
	for i, v := range raw {
		res.Values[i] = transform.Apply(v, p.Bindings[i].Transform)
	}
	return res, nil
}

func (p *Pipeline) check(idx int, value string) bool {
	col := p.Bindings[idx].Column
	if p.Checker == nil || p.Checker.Check(col, value) {
		return true
	}
	p.stats.Rejected++
	if p.OnReject != nil {
		p.OnReject(Rejection{Line: p.stats.Lines, Column: col, Value: value})
	}
	return false
}
