package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type address struct {
	City string `json:"city"`
}

type person struct {
	Name      string          `json:"name"`
	Address   *address        `json:"address"`
	Tags      []string        `json:"tags"`
	Extra     json.RawMessage `json:"extra"`
	CreatedAt time.Time
}

type taggedUnion struct {
	kind  string
	value any
}

func (u taggedUnion) Property(name string) (any, bool) {
	switch name {
	case "kind":
		return u.kind, true
	case "value":
		return u.value, true
	}
	return nil, false
}

func TestPathAccessor_Get(t *testing.T) {
	created := time.Date(2022, time.February, 7, 0, 0, 0, 0, time.UTC)
	record := person{
		Name:      "Tester",
		Address:   &address{City: "Berlin"},
		Tags:      []string{"a", "b"},
		Extra:     json.RawMessage(`{"upload":{"file":{"name":"test.txt"}},"SaveToDatabase":{"insertedUids.0":124},"items":[{"id":1},{"id":2}]}`),
		CreatedAt: created,
	}

	tests := []struct {
		name   string
		record any
		path   string
		want   any
		found  bool
	}{
		{name: "struct json tag", record: record, path: "name", want: "Tester", found: true},
		{name: "struct field name", record: record, path: "createdAt", want: created, found: true},
		{name: "pointer struct", record: &record, path: "address.city", want: "Berlin", found: true},
		{name: "slice index", record: record, path: "tags.1", want: "b", found: true},
		{name: "index out of range", record: record, path: "tags.5", found: false},
		{name: "missing field", record: record, path: "email", found: false},
		{name: "raw json nested", record: record, path: "extra.upload.file.name", want: "test.txt", found: true},
		{name: "raw json array", record: record, path: "extra.items.1.id", want: json.Number("2"), found: true},
		{name: "raw json escaped dot", record: record, path: `extra.SaveToDatabase.insertedUids\.0`, want: json.Number("124"), found: true},
		{name: "raw json missing", record: record, path: "extra.nothing", found: false},
		{
			name:   "map nested",
			record: map[string]any{"address": map[string]any{"city": "Hamburg"}},
			path:   "address.city",
			want:   "Hamburg",
			found:  true,
		},
		{
			name:   "map with slice",
			record: map[string]any{"items": []any{map[string]any{"c": 3}}},
			path:   "items.0.c",
			want:   3,
			found:  true,
		},
		{name: "int keyed map", record: map[int]string{7: "seven"}, path: "7", want: "seven", found: true},
		{name: "nil pointer", record: person{}, path: "address.city", found: false},
		{name: "property getter", record: taggedUnion{kind: "text", value: "hi"}, path: "value", want: "hi", found: true},
		{name: "property getter missing", record: taggedUnion{}, path: "other", found: false},
		{name: "scalar record", record: 5, path: "x", found: false},
		{name: "nil record", record: nil, path: "x", found: false},
		{name: "empty path", record: record, path: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PathAccessor{}.Get(tt.record, tt.path)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestJSONAccessor_Get(t *testing.T) {
	doc := []byte(`{"name":"Tester","flags":{"opt_in":false},"upload":{"file":{"name":"test.txt"}}}`)

	got, ok := JSONAccessor{}.Get(doc, "name")
	assert.True(t, ok)
	assert.Equal(t, "Tester", got)

	got, ok = JSONAccessor{}.Get(string(doc), "flags.opt_in")
	assert.True(t, ok)
	assert.Equal(t, false, got)

	got, ok = JSONAccessor{}.Get(json.RawMessage(doc), "upload")
	assert.True(t, ok)
	assert.JSONEq(t, `{"file":{"name":"test.txt"}}`, string(got.(json.RawMessage)))

	_, ok = JSONAccessor{}.Get(doc, "missing")
	assert.False(t, ok)

	got, ok = JSONAccessor{}.Get(map[string]any{"a": 1}, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"name", []string{"name"}},
		{"a.b.0.c", []string{"a", "b", "0", "c"}},
		{`vars.insertedUids\.0`, []string{"vars", "insertedUids.0"}},
		{`a\\.b`, []string{`a\`, "b"}},
		{`trailing\`, []string{`trailing\`}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPath(tt.path))
		})
	}
}
