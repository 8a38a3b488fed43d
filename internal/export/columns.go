package export

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Translator looks up a display text for a header label.
// The boolean is false when no translation exists; that is an expected outcome.
type Translator interface {
	Translate(key string) (string, bool)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(key string) (string, bool)

// Translate implements Translator.
func (f TranslatorFunc) Translate(key string) (string, bool) {
	return f(key)
}

// ResolvedColumn pairs a header label with the property path of the same column.
type ResolvedColumn struct {
	Header string
	Path   string
}

// ColumnResolver derives headers and property paths from a Configuration.
type ColumnResolver struct {
	translator Translator
}

// NewColumnResolver returns a resolver. A nil translator keeps labels verbatim.
func NewColumnResolver(t Translator) *ColumnResolver {
	return &ColumnResolver{translator: t}
}

// Resolve returns the configured columns in ascending sort key order.
func (r *ColumnResolver) Resolve(cfg Configuration) ([]ResolvedColumn, error) {
	cols, err := sortedColumns(cfg.Columns)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedColumn, len(cols))
	for i, col := range cols {
		resolved[i] = ResolvedColumn{
			Header: r.label(col.Label),
			Path:   col.Property,
		}
	}
	return resolved, nil
}

// Headers returns the header labels, translated where possible.
func (r *ColumnResolver) Headers(cfg Configuration) ([]string, error) {
	resolved, err := r.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	headers := make([]string, len(resolved))
	for i, col := range resolved {
		headers[i] = col.Header
	}
	return headers, nil
}

// ColumnPaths returns the property paths in the same order as Headers.
func (r *ColumnResolver) ColumnPaths(cfg Configuration) ([]string, error) {
	resolved, err := r.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(resolved))
	for i, col := range resolved {
		paths[i] = col.Path
	}
	return paths, nil
}

func (r *ColumnResolver) label(raw string) string {
	if r.translator == nil {
		return raw
	}
	if translated, ok := r.translator.Translate(raw); ok && translated != "" {
		return translated
	}
	return raw
}

// sortedColumns validates the column set and returns a sorted copy.
func sortedColumns(columns Columns) ([]Column, error) {
	if len(columns) == 0 {
		return nil, &ConfigurationError{Kind: KindEmptyColumnSet}
	}

	cols := slices.Clone([]Column(columns))
	slices.SortStableFunc(cols, func(a, b Column) int {
		return cmp.Compare(a.SortKey, b.SortKey)
	})

	for i, col := range cols {
		if i > 0 && cols[i-1].SortKey == col.SortKey {
			return nil, &ConfigurationError{
				Kind:   KindDuplicateSortKey,
				Detail: fmt.Sprintf("sort key %d used by %q and %q", col.SortKey, cols[i-1].Property, col.Property),
			}
		}
		if strings.TrimSpace(col.Property) == "" {
			return nil, &ConfigurationError{
				Kind:   KindEmptyProperty,
				Detail: fmt.Sprintf("column with sort key %d", col.SortKey),
			}
		}
	}

	return cols, nil
}
