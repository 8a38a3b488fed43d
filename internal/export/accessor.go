package export

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// PropertyAccessor resolves a property path against a record.
// The boolean is false when the path does not exist; that is not an error.
type PropertyAccessor interface {
	Get(record any, path string) (any, bool)
}

// PropertyGetter lets a record type resolve its own path segments.
// It takes precedence over reflection.
type PropertyGetter interface {
	Property(name string) (any, bool)
}

// PathAccessor walks maps, slices, arrays, structs and PropertyGetter values
// one segment at a time. When the walk reaches a json.RawMessage the rest of
// the path is evaluated inside the JSON document.
//
// Paths are dot separated ("address.city", "items.0.name"). A literal dot in a
// key is written as "\.".
type PathAccessor struct{}

// Get implements PropertyAccessor.
func (PathAccessor) Get(record any, path string) (any, bool) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return nil, false
	}
	return walk(record, segments)
}

// JSONAccessor evaluates paths inside raw JSON records ([]byte, string or
// json.RawMessage). Other record types fall back to PathAccessor.
type JSONAccessor struct{}

// Get implements PropertyAccessor.
func (JSONAccessor) Get(record any, path string) (any, bool) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return nil, false
	}

	switch doc := record.(type) {
	case json.RawMessage:
		return lookupJSON(doc, segments)
	case []byte:
		return lookupJSON(doc, segments)
	case string:
		return lookupJSON([]byte(doc), segments)
	}
	return walk(record, segments)
}

// SplitPath splits a property path on unescaped dots.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}

	var (
		segments []string
		current  strings.Builder
		escaped  bool
	)
	for _, r := range path {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '.':
			segments = append(segments, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	return append(segments, current.String())
}

func walk(v any, segments []string) (any, bool) {
	for i, seg := range segments {
		if v == nil {
			return nil, false
		}

		switch cur := v.(type) {
		case json.RawMessage:
			return lookupJSON(cur, segments[i:])
		case PropertyGetter:
			next, ok := cur.Property(seg)
			if !ok {
				return nil, false
			}
			v = next
			continue
		}

		next, ok := step(reflect.ValueOf(v), seg)
		if !ok {
			return nil, false
		}
		v = next
	}
	return v, true
}

// step resolves one segment on a reflected value.
func step(rv reflect.Value, seg string) (any, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		key, ok := mapKey(rv.Type().Key(), seg)
		if !ok {
			return nil, false
		}
		val := rv.MapIndex(key)
		if !val.IsValid() {
			return nil, false
		}
		return interfaceOf(val)

	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return interfaceOf(rv.Index(idx))

	case reflect.Struct:
		return structField(rv, seg)
	}

	return nil, false
}

func mapKey(keyType reflect.Type, seg string) (reflect.Value, bool) {
	switch keyType.Kind() {
	case reflect.String:
		return reflect.ValueOf(seg).Convert(keyType), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(seg, 10, keyType.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(keyType), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(seg, 10, keyType.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(keyType), true
	}
	return reflect.Value{}, false
}

// structField matches a segment against the json tag name first, then the
// field name case-insensitively.
func structField(rv reflect.Value, seg string) (any, bool) {
	var fallback []int

	for _, f := range reflect.VisibleFields(rv.Type()) {
		if !f.IsExported() || (f.Anonymous && f.Type.Kind() == reflect.Struct) {
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == seg {
			return fieldByIndex(rv, f.Index)
		}
		if fallback == nil && name != "-" && strings.EqualFold(f.Name, seg) {
			fallback = f.Index
		}
	}

	if fallback != nil {
		return fieldByIndex(rv, fallback)
	}
	return nil, false
}

func fieldByIndex(rv reflect.Value, index []int) (any, bool) {
	fv, err := rv.FieldByIndexErr(index)
	if err != nil {
		return nil, false
	}
	return interfaceOf(fv)
}

func interfaceOf(rv reflect.Value) (any, bool) {
	if !rv.IsValid() || !rv.CanInterface() {
		return nil, false
	}
	return rv.Interface(), true
}

func lookupJSON(doc []byte, segments []string) (any, bool) {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = gjson.Escape(seg)
	}

	res := gjson.GetBytes(doc, strings.Join(escaped, "."))
	if !res.Exists() {
		return nil, false
	}
	return jsonValue(res), true
}

// jsonValue converts a gjson result without losing number precision.
func jsonValue(res gjson.Result) any {
	switch res.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(res.Raw)
	case gjson.String:
		return res.Str
	default:
		return json.RawMessage(res.Raw)
	}
}
