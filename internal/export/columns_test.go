package export

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnResolver_OrdersBySortKey(t *testing.T) {
	cfg := Configuration{Columns: Columns{
		{SortKey: 30, Property: "data.email", Label: "Email"},
		{SortKey: 10, Property: "identifier", Label: "Form"},
		{SortKey: 20, Property: "data.name", Label: "Name"},
	}}
	r := NewColumnResolver(nil)

	headers, err := r.Headers(cfg)
	require.NoError(t, err)
	paths, err := r.ColumnPaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"Form", "Name", "Email"}, headers)
	assert.Equal(t, []string{"identifier", "data.name", "data.email"}, paths)
}

func TestColumnResolver_OrderIndependentOfInput(t *testing.T) {
	base := Columns{
		{SortKey: 2, Property: "b", Label: "B"},
		{SortKey: -1, Property: "z", Label: "Z"},
		{SortKey: 7, Property: "c", Label: "C"},
	}
	permutations := []Columns{
		{base[0], base[1], base[2]},
		{base[2], base[0], base[1]},
		{base[1], base[2], base[0]},
	}

	r := NewColumnResolver(nil)
	for _, cols := range permutations {
		paths, err := r.ColumnPaths(Configuration{Columns: cols})
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "b", "c"}, paths)
	}
}

func TestColumnResolver_HeadersAlignWithPaths(t *testing.T) {
	cfg := Configuration{Columns: Columns{
		{SortKey: 5, Property: "e", Label: "E"},
		{SortKey: 1, Property: "a", Label: "A"},
		{SortKey: 3, Property: "c", Label: "C"},
	}}
	r := NewColumnResolver(nil)

	resolved, err := r.Resolve(cfg)
	require.NoError(t, err)
	headers, _ := r.Headers(cfg)
	paths, _ := r.ColumnPaths(cfg)

	require.Len(t, headers, len(paths))
	for i, col := range resolved {
		assert.Equal(t, col.Header, headers[i])
		assert.Equal(t, col.Path, paths[i])
	}
}

func TestColumnResolver_Translation(t *testing.T) {
	catalog := map[string]string{
		"formlog.entry.identifier": "Formular",
		"formlog.entry.blank":      "",
	}
	translator := TranslatorFunc(func(key string) (string, bool) {
		v, ok := catalog[key]
		return v, ok
	})

	cfg := Configuration{Columns: Columns{
		{SortKey: 0, Property: "identifier", Label: "formlog.entry.identifier"},
		{SortKey: 1, Property: "data.name", Label: "Name"},
		{SortKey: 2, Property: "pageId", Label: "formlog.entry.blank"},
	}}

	headers, err := NewColumnResolver(translator).Headers(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"Formular", "Name", "formlog.entry.blank"}, headers)
}

func TestColumnResolver_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name     string
		columns  Columns
		wantKind string
	}{
		{name: "nil columns", columns: nil, wantKind: KindEmptyColumnSet},
		{name: "empty columns", columns: Columns{}, wantKind: KindEmptyColumnSet},
		{
			name:     "duplicate sort key",
			columns:  Columns{{SortKey: 1, Property: "a"}, {SortKey: 1, Property: "b"}},
			wantKind: KindDuplicateSortKey,
		},
		{
			name:     "empty property",
			columns:  Columns{{SortKey: 1, Property: " ", Label: "Blank"}},
			wantKind: KindEmptyProperty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewColumnResolver(nil)

			_, err := r.Headers(Configuration{Columns: tt.columns})
			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.wantKind, ce.Kind)

			_, err = r.ColumnPaths(Configuration{Columns: tt.columns})
			assert.True(t, IsConfigurationError(err))
		})
	}
}
