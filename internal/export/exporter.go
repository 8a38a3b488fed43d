package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Format serializes a header row and a row sequence to a writer.
// Implementations return the number of data rows written.
type Format interface {
	Name() string
	Extension() string
	ContentType() string
	Write(ctx context.Context, w io.Writer, headers []string, rows iter.Seq2[Row, error]) (int, error)
}

// Result describes a completed Dump.
type Result struct {
	Path string
	Rows int
}

// Exporter runs exports of one Format with one Configuration.
// An Exporter is not safe for concurrent use; concurrent runs need their own.
type Exporter struct {
	format    Format
	resolver  *ColumnResolver
	accessor  PropertyAccessor
	outputDir string
	cfg       Configuration
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithTranslator sets the header label translator.
func WithTranslator(t Translator) Option {
	return func(e *Exporter) {
		e.resolver = NewColumnResolver(t)
	}
}

// WithAccessor overrides the property accessor (default PathAccessor).
func WithAccessor(a PropertyAccessor) Option {
	return func(e *Exporter) {
		e.accessor = a
	}
}

// WithOutputDir sets the directory Dump writes into (default ".").
func WithOutputDir(dir string) Option {
	return func(e *Exporter) {
		e.outputDir = dir
	}
}

// New returns an Exporter for the given format.
func New(format Format, opts ...Option) *Exporter {
	e := &Exporter{
		format:    format,
		resolver:  NewColumnResolver(nil),
		accessor:  PathAccessor{},
		outputDir: ".",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.outputDir == "" {
		e.outputDir = "."
	}
	return e
}

// SetConfiguration sets the configuration used by the next run.
func (e *Exporter) SetConfiguration(cfg Configuration) {
	e.cfg = cfg
}

// Configuration returns the current configuration.
func (e *Exporter) Configuration() Configuration {
	return e.cfg
}

// Format returns the output format.
func (e *Exporter) Format() Format {
	return e.format
}

// OutputFilename returns "{fileBasename}.{extension}".
func (e *Exporter) OutputFilename() string {
	return e.cfg.OutputFilename(e.format.Extension())
}

// Headers returns the resolved header row.
func (e *Exporter) Headers() ([]string, error) {
	return e.resolver.Headers(e.cfg)
}

// WriteTo streams the header and one row per record to w.
//
// Configuration errors are returned before anything is written. Errors from
// the record source are wrapped with "read records"; failures writing w are
// returned as *IOError.
func (e *Exporter) WriteTo(ctx context.Context, w io.Writer, records Records) (int, error) {
	resolved, err := e.resolver.Resolve(e.cfg)
	if err != nil {
		return 0, err
	}

	headers := make([]string, len(resolved))
	paths := make([]string, len(resolved))
	for i, col := range resolved {
		headers[i] = col.Header
		paths[i] = col.Path
	}

	gen := NewRowGenerator(e.accessor, NewValueFormatter(e.cfg.DateFormat()))

	var sourceErr error
	rows := func(yield func(Row, error) bool) {
		for row, err := range gen.Generate(records, paths) {
			if err != nil {
				sourceErr = err
				yield(nil, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}

	n, err := e.format.Write(ctx, w, headers, rows)
	if err == nil {
		return n, nil
	}

	switch {
	case sourceErr != nil && errors.Is(err, sourceErr):
		return n, fmt.Errorf("read records: %w", sourceErr)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return n, err
	case IsIOError(err):
		return n, err
	default:
		return n, &IOError{Op: "write", Err: err}
	}
}

// Dump writes the export to {outputDir}/{fileBasename}.{extension}.
//
// Output goes to a temporary file in the same directory which is renamed into
// place only after every row has been written and synced. On any failure the
// temporary file is removed, so an existing destination is either replaced by
// a complete export or left untouched.
func (e *Exporter) Dump(ctx context.Context, records Records) (Result, error) {
	if _, err := e.resolver.Resolve(e.cfg); err != nil {
		return Result{}, err
	}

	name := e.OutputFilename()
	if strings.ContainsAny(e.cfg.Basename(), `/\`) || name != filepath.Base(name) {
		return Result{}, &ConfigurationError{Kind: KindInvalidBasename, Detail: e.cfg.Basename()}
	}
	path := filepath.Join(e.outputDir, name)

	tmp, err := os.CreateTemp(e.outputDir, "."+name+".*.tmp")
	if err != nil {
		return Result{}, &IOError{Op: "create", Path: path, Err: err}
	}

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)

	n, err := e.WriteTo(ctx, bw, records)
	if err != nil {
		var ioErr *IOError
		if errors.As(err, &ioErr) && ioErr.Path == "" {
			ioErr.Path = path
		}
		return Result{Rows: n}, err
	}

	if err := bw.Flush(); err != nil {
		return Result{Rows: n}, &IOError{Op: "flush", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return Result{Rows: n}, &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return Result{Rows: n}, &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Result{Rows: n}, &IOError{Op: "rename", Path: path, Err: err}
	}

	committed = true
	return Result{Path: path, Rows: n}, nil
}
