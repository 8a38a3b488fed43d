package export

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ListSeparator joins the formatted elements of slices and arrays.
const ListSeparator = ", "

// FileReference is implemented by values that stand for an uploaded file.
type FileReference interface {
	FileName() string
}

// UploadedFile is the file reference recorded for an upload field.
type UploadedFile struct {
	Name     string `json:"name"`
	MimeType string `json:"type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// FileName implements FileReference.
func (f UploadedFile) FileName() string {
	return f.Name
}

// FileValue returns the structured form of a file reference:
// {"file":{"name":"test.txt"}}.
func FileValue(name string) any {
	return object{{"file", object{{"name", name}}}}
}

// ValueFormatter converts record values into their canonical string form.
//
// Rules, in order:
//   - nil, empty strings, zero times, empty slices and maps: ""
//   - time values: formatted with the date/time pattern
//   - file references: {"file":{"name":"..."}}
//   - strings, numbers: their natural representation
//   - booleans: "true" / "false"
//   - slices and arrays: formatted elements joined with ListSeparator
//   - maps, structs and JSON documents: compact JSON; map keys sorted,
//     struct fields and JSON members in declaration order
//   - anything else: fmt.Sprint
//
// Format never panics.
type ValueFormatter struct {
	dateTimeFormat string
}

// NewValueFormatter returns a formatter using the given date/time pattern.
// An empty pattern selects DateTimeW3C.
func NewValueFormatter(dateTimeFormat string) *ValueFormatter {
	if strings.TrimSpace(dateTimeFormat) == "" {
		dateTimeFormat = DateTimeW3C
	}
	return &ValueFormatter{dateTimeFormat: dateTimeFormat}
}

// DateTimeFormat returns the pattern used for time values.
func (f *ValueFormatter) DateTimeFormat() string {
	return f.dateTimeFormat
}

// Format converts v into a string.
func (f *ValueFormatter) Format(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprint(v)
		}
	}()

	if isNilPointer(v) {
		return ""
	}

	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case json.RawMessage:
		return f.formatJSON(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return FormatDateTime(val, f.dateTimeFormat)
	case *time.Time:
		if val == nil {
			return ""
		}
		return f.Format(*val)
	case FileReference:
		return encode(FileValue(val.FileName()))
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return ""
		}
		return f.Format(dv)
	case []byte:
		return string(val)
	case error:
		return val.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return f.Format(rv.Elem().Interface())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, rv.Type().Bits())
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = f.Format(rv.Index(i).Interface())
		}
		return strings.Join(parts, ListSeparator)
	case reflect.Map:
		if rv.Len() == 0 {
			return ""
		}
		return encode(f.normalize(v))
	case reflect.Struct:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return encode(f.normalize(v))
	}

	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// isNilPointer reports a typed nil pointer, which would otherwise match the
// interface cases and panic on method calls.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (f *ValueFormatter) formatJSON(raw json.RawMessage) string {
	res := gjson.ParseBytes(raw)
	switch res.Type {
	case gjson.JSON:
		return encode(f.normalizeJSON(res))
	default:
		return f.Format(jsonValue(res))
	}
}

// normalize converts v into a tree json can encode with the formatter's rules
// applied to the leaves.
func (f *ValueFormatter) normalize(v any) any {
	if isNilPointer(v) {
		return nil
	}

	switch val := v.(type) {
	case nil, string, bool, json.Number:
		return val
	case json.RawMessage:
		return f.normalizeJSON(gjson.ParseBytes(val))
	case time.Time:
		return f.Format(val)
	case *time.Time:
		return f.Format(val)
	case FileReference:
		return FileValue(val.FileName())
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return nil
		}
		return f.normalize(dv)
	case []byte:
		return string(val)
	case error:
		return val.Error()
	case object:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return f.normalize(rv.Elem().Interface())
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return v
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = f.normalize(rv.Index(i).Interface())
		}
		return items
	case reflect.Map:
		keys := rv.MapKeys()
		members := make(object, 0, len(keys))
		for _, k := range keys {
			members = append(members, member{fmt.Sprint(k.Interface()), f.normalize(rv.MapIndex(k).Interface())})
		}
		slices.SortFunc(members, func(a, b member) int { return strings.Compare(a.key, b.key) })
		return members
	case reflect.Struct:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return f.normalizeStruct(rv)
	}

	return fmt.Sprint(v)
}

func (f *ValueFormatter) normalizeStruct(rv reflect.Value) object {
	var members object
	for _, field := range reflect.VisibleFields(rv.Type()) {
		if !field.IsExported() || (field.Anonymous && field.Type.Kind() == reflect.Struct) {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}

		fv, err := rv.FieldByIndexErr(field.Index)
		if err != nil {
			continue
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		members = append(members, member{name, f.normalize(fv.Interface())})
	}
	return members
}

// normalizeJSON keeps JSON object members in document order.
func (f *ValueFormatter) normalizeJSON(res gjson.Result) any {
	switch {
	case res.IsObject():
		var members object
		res.ForEach(func(key, value gjson.Result) bool {
			members = append(members, member{key.String(), f.normalizeJSON(value)})
			return true
		})
		return members
	case res.IsArray():
		var items []any
		res.ForEach(func(_, value gjson.Result) bool {
			items = append(items, f.normalizeJSON(value))
			return true
		})
		return items
	default:
		return jsonValue(res)
	}
}

type member struct {
	key   string
	value any
}

// object is a JSON object that keeps its member order.
type object []member

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(encode(m.key))
		buf.WriteByte(':')
		val := encode(m.value)
		if val == "" {
			val = "null"
		}
		buf.WriteString(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encode marshals v without HTML escaping. It returns "" if v cannot be encoded.
func encode(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
