package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/wordsql/pkg/constraint"
	"github.com/umputun/wordsql/pkg/schema"
	"github.com/umputun/wordsql/pkg/transform"
)

func TestPipeline_Rows(t *testing.T) {
	userCol := schema.Column{Name: "user", DataType: "varchar(20)", Constraint: schema.ConstraintNotNull}
	passCol := schema.Column{Name: "pass", DataType: "varchar(64)"}

	t.Run("same file in lock-step", func(t *testing.T) {
		p := Pipeline{
			Bindings: []schema.Binding{
				{Column: userCol, Path: "users.txt"},
				{Column: passCol, Path: "users.txt", Transform: schema.TransformSHA256},
			},
			Checker: constraint.NewTracker(constraint.Shared),
		}
		var rejected []Rejection
		p.OnReject = func(r Rejection) { rejected = append(rejected, r) }

		data := "alice\nbob\n\ncarol\n"
		rows := collect(t, &p, srcs(data, data))
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"alice", transform.Apply("alice", schema.TransformSHA256)}, rows[0].Values)
		assert.Equal(t, []string{"bob", transform.Apply("bob", schema.TransformSHA256)}, rows[1].Values)
		// pass source not advanced for the rejected empty line, so carol pairs with it
		assert.Equal(t, []string{"carol", transform.Apply("", schema.TransformSHA256)}, rows[2].Values)
		assert.Equal(t, []int{1, 2, 4}, []int{rows[0].Line, rows[1].Line, rows[2].Line})

		require.Len(t, rejected, 1)
		assert.Equal(t, Rejection{Line: 3, Column: userCol, Value: ""}, rejected[0])
		assert.Equal(t, Stats{Lines: 4, Accepted: 3, Rejected: 1}, p.Stats())
	})

	t.Run("rejected driver line doesn't advance other sources", func(t *testing.T) {
		p := Pipeline{
			Bindings: []schema.Binding{{Column: userCol}, {Column: passCol}},
			Checker:  constraint.NewTracker(constraint.Shared),
		}
		// driver has an extra empty line, other source is one line shorter
		rows := collect(t, &p, srcs("a\n\nb\n", "1\n2\n"))
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"a", "1"}, rows[0].Values)
		assert.Equal(t, []string{"b", "2"}, rows[1].Values)
	})

	t.Run("rejected non-driver line consumes lines", func(t *testing.T) {
		uniq := schema.Column{Name: "code", DataType: "int", Constraint: schema.ConstraintUnique}
		p := Pipeline{
			Bindings: []schema.Binding{{Column: passCol}, {Column: uniq}, {Column: passCol}},
			Checker:  constraint.NewTracker(constraint.Shared),
		}
		rows := collect(t, &p, srcs("a\nb\nc\n", "1\n1\n2\n", "x\ny\nz\n"))
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"a", "1", "x"}, rows[0].Values)
		// row for "b" dropped on duplicate "1", third source not advanced for it
		assert.Equal(t, []string{"c", "2", "y"}, rows[1].Values)
		assert.Equal(t, Stats{Lines: 3, Accepted: 2, Rejected: 1}, p.Stats())
	})

	t.Run("unique set shared across columns", func(t *testing.T) {
		a := schema.Column{Name: "a", DataType: "int", Constraint: schema.ConstraintUnique}
		b := schema.Column{Name: "b", DataType: "int", Constraint: schema.ConstraintUnique}
		p := Pipeline{Bindings: []schema.Binding{{Column: a}, {Column: b}}, Checker: constraint.NewTracker(constraint.Shared)}
		rows := collect(t, &p, srcs("1\n2\n", "2\n3\n"))
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"1", "2"}, rows[0].Values)

		p = Pipeline{Bindings: []schema.Binding{{Column: a}, {Column: b}}, Checker: constraint.NewTracker(constraint.PerColumn)}
		rows = collect(t, &p, srcs("1\n2\n", "2\n3\n"))
		require.Len(t, rows, 2)
	})

	t.Run("no checker accepts everything", func(t *testing.T) {
		p := Pipeline{Bindings: []schema.Binding{{Column: userCol}}}
		rows := collect(t, &p, srcs("\n\n"))
		assert.Len(t, rows, 2)
	})

	t.Run("windows line endings", func(t *testing.T) {
		p := Pipeline{Bindings: []schema.Binding{{Column: passCol}}}
		rows := collect(t, &p, srcs("a\r\nb\r\n"))
		require.Len(t, rows, 2)
		assert.Equal(t, "a", rows[0].Values[0])
	})

	t.Run("early break", func(t *testing.T) {
		p := Pipeline{Bindings: []schema.Binding{{Column: passCol}}}
		count := 0
		for _, err := range p.Rows(context.Background(), srcs("a\nb\nc\n")) {
			require.NoError(t, err)
			count++
			break
		}
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, p.Stats().Accepted)
	})
}

func TestPipeline_RowsErrors(t *testing.T) {
	col := schema.Column{Name: "a", DataType: "text"}

	t.Run("non-driver source exhausted", func(t *testing.T) {
		p := Pipeline{Bindings: []schema.Binding{{Column: col, Path: "a.txt"}, {Column: col, Path: "b.txt"}}}
		var rows []Row
		var err error
		for r, e := range p.Rows(context.Background(), srcs("1\n2\n3\n", "x\n")) {
			if e != nil {
				err = e
				break
			}
			rows = append(rows, r)
		}
		require.ErrorIs(t, err, ErrSourceExhausted)
		assert.Contains(t, err.Error(), "b.txt has no line for driver line 2")
		assert.Len(t, rows, 1)
	})

	t.Run("sources count mismatch", func(t *testing.T) {
		p := Pipeline{Bindings: []schema.Binding{{Column: col}, {Column: col}}}
		err := firstErr(context.Background(), &p, srcs("1\n"))
		require.EqualError(t, err, "got 1 sources for 2 wordlists")
	})

	t.Run("read error", func(t *testing.T) {
		p := Pipeline{Bindings: []schema.Binding{{Column: col, Path: "a.txt"}, {Column: col, Path: "b.txt"}}}
		err := firstErr(context.Background(), &p, []Source{NewReaderSource(strings.NewReader("1\n")), errSource{}})
		require.EqualError(t, err, "can't read b.txt: disk failure")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := Pipeline{Bindings: []schema.Binding{{Column: col}}}
		err := firstErr(ctx, &p, srcs("1\n"))
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no bindings", func(t *testing.T) {
		p := Pipeline{}
		assert.NoError(t, firstErr(context.Background(), &p, nil))
	})
}

func TestOpenFiles(t *testing.T) {
	t.Run("same file twice", func(t *testing.T) {
		sources, closeFn, err := OpenFiles([]string{"testdata/words.txt", "testdata/words.txt"})
		require.NoError(t, err)
		defer func() { assert.NoError(t, closeFn()) }()
		require.Len(t, sources, 2)

		l1, err := sources[0].Next()
		require.NoError(t, err)
		l2, err := sources[1].Next()
		require.NoError(t, err)
		assert.Equal(t, "alice", l1)
		assert.Equal(t, l1, l2, "each source has its own position")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := OpenFiles([]string{"testdata/words.txt", "testdata/no-such-file.txt"})
		require.EqualError(t, err, `wordlist "testdata/no-such-file.txt" is not a file`)
	})

	t.Run("directory", func(t *testing.T) {
		_, _, err := OpenFiles([]string{"testdata"})
		require.Error(t, err)
	})
}

func TestReaderSource_LongLine(t *testing.T) {
	long := strings.Repeat("x", 100*1024)
	s := NewReaderSource(strings.NewReader(long + "\nshort\n"))
	l, err := s.Next()
	require.NoError(t, err)
	assert.Len(t, l, 100*1024)
	l, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "short", l)
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

type errSource struct{}

func (errSource) Next() (string, error) { return "", errors.New("disk failure") }

func srcs(data ...string) []Source {
	res := make([]Source, 0, len(data))
	for _, d := range data {
		res = append(res, NewReaderSource(strings.NewReader(d)))
	}
	return res
}

func collect(t *testing.T, p *Pipeline, sources []Source) []Row {
	t.Helper()
	var res []Row
	for r, err := range p.Rows(context.Background(), sources) {
		require.NoError(t, err)
		res = append(res, r)
	}
	return res
}

func firstErr(ctx context.Context, p *Pipeline, sources []Source) error {
	for _, err := range p.Rows(ctx, sources) {
		if err != nil {
			return err
		}
	}
	return nil
}
