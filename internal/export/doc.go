// Package export turns a stream of structured records into tabular output.
//
// The package is independent of the form log it was built for. Any value that
// supports property-path lookup can be exported: maps, JSON documents, structs,
// or types implementing [PropertyGetter].
//
// # Pipeline
//
// An export run flows through four stages:
//
//  1. [ColumnResolver] orders the configured columns by sort key and derives
//     the header labels (translated when a [Translator] knows the label) and
//     the property paths.
//  2. [RowGenerator] pulls records one at a time and evaluates every property
//     path through a [PropertyAccessor].
//  3. [ValueFormatter] converts each resolved value into its canonical string.
//  4. A [Format] (CSV or XLSX) serializes the header and the rows, driven by
//     an [Exporter] that either streams to an io.Writer or dumps to a file.
//
// # Configuration
//
//	cfg := export.Configuration{
//	    Columns: []export.Column{
//	        {SortKey: 10, Property: "identifier", Label: "formlog.entry.identifier"},
//	        {SortKey: 20, Property: "data.name", Label: "Name"},
//	    },
//	    FileBasename:   "submissions",
//	    DateTimeFormat: "d.m.Y H:i",
//	}
//
// # Errors
//
// An empty or inconsistent column set is reported as a [*ConfigurationError]
// before any output is produced. Failures writing the destination are
// reported as [*IOError]. Formatting a value never fails.
package export
