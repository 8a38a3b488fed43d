package export

import (
	"iter"
	"sync/atomic"
)

// Row is one formatted record, aligned with the header row.
type Row []string

// Records is a forward-only source of records. A non-nil error ends the export.
type Records = iter.Seq2[any, error]

// FromSlice adapts a slice to Records.
func FromSlice[T any](items []T) Records {
	return func(yield func(any, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// FromSeq adapts an iter.Seq to Records.
func FromSeq[T any](seq iter.Seq[T]) Records {
	return func(yield func(any, error) bool) {
		for item := range seq {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// RowGenerator evaluates column paths against records and formats the results.
type RowGenerator struct {
	accessor  PropertyAccessor
	formatter *ValueFormatter
}

// NewRowGenerator returns a generator. A nil accessor selects PathAccessor and
// a nil formatter selects the W3C date/time pattern.
func NewRowGenerator(accessor PropertyAccessor, formatter *ValueFormatter) *RowGenerator {
	if accessor == nil {
		accessor = PathAccessor{}
	}
	if formatter == nil {
		formatter = NewValueFormatter("")
	}
	return &RowGenerator{accessor: accessor, formatter: formatter}
}

// Row formats a single record. Paths that do not resolve yield "".
func (g *RowGenerator) Row(record any, paths []string) Row {
	row := make(Row, len(paths))
	for i, path := range paths {
		value, ok := g.accessor.Get(record, path)
		if !ok {
			continue
		}
		row[i] = g.formatter.Format(value)
	}
	return row
}

// Generate returns a lazy sequence with one row per record, in input order.
// Records are pulled only as rows are consumed. The sequence can be ranged
// over once; a second pass yields ErrRowsConsumed.
func (g *RowGenerator) Generate(records Records, paths []string) iter.Seq2[Row, error] {
	var used atomic.Bool

	return func(yield func(Row, error) bool) {
		if used.Swap(true) {
			yield(nil, ErrRowsConsumed)
			return
		}

		for record, err := range records {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(g.Row(record, paths), nil) {
				return
			}
		}
	}
}
