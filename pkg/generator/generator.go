// Package generator produces the sql script for a table: CREATE TABLE followed by INSERT for every
// accepted row. Statements go to one or more sinks, like an output file or a database.
package generator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/umputun/wordsql/pkg/pipeline"
	"github.com/umputun/wordsql/pkg/schema"
	"github.com/umputun/wordsql/pkg/sqlgen"
)

// Sink accepts generated statements
type Sink interface {
	Exec(ctx context.Context, stmt string) error
}

// Generator makes statements for a table from wordlist sources
type Generator struct {
	Table    string
	Schema   *schema.Schema
	Dialect  sqlgen.Dialect
	Pipeline *pipeline.Pipeline
	Sinks    []Sink
}

// Run writes CREATE TABLE and INSERT statements to all sinks. Statements already passed to sinks
// stay there if Run fails in the middle.
func (g *Generator) Run(ctx context.Context, sources []pipeline.Source) (pipeline.Stats, error) {
	if err := g.emit(ctx, g.Dialect.CreateTable(g.Table, g.Schema.Columns)); err != nil {
		return pipeline.Stats{}, err
	}
	log.Printf("[DEBUG] table %s created with %d columns, dialect %s", g.Table, len(g.Schema.Columns), g.Dialect.Name())

	for row, err := range g.Pipeline.Rows(ctx, sources) {
		if err != nil {
			return g.Pipeline.Stats(), fmt.Errorf("can't make rows: %w", err)
		}
		if err := g.emit(ctx, g.Dialect.Insert(g.Table, g.Schema.Columns, row.Values)); err != nil {
			return g.Pipeline.Stats(), fmt.Errorf("row %d: %w", row.Line, err)
		}
	}
	return g.Pipeline.Stats(), nil
}

func (g *Generator) emit(ctx context.Context, stmt string) error {
	for _, s := range g.Sinks {
		if err := s.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// WriterSink writes statements to io.Writer, buffered. Flush must be called at the end.
type WriterSink struct {
	wr *bufio.Writer
}

// NewWriterSink makes WriterSink for the writer
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{wr: bufio.NewWriter(w)}
}

// Exec writes statement as is
func (w *WriterSink) Exec(_ context.Context, stmt string) error {
	if _, err := w.wr.WriteString(stmt); err != nil {
		return fmt.Errorf("can't write statement: %w", err)
	}
	return nil
}

// Flush writes buffered statements to the underlying writer
func (w *WriterSink) Flush() error {
	return w.wr.Flush()
}
