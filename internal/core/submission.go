package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	db "github.com/JonMunkholm/formlog/internal/database"
	"github.com/JonMunkholm/formlog/internal/export"
	"github.com/JonMunkholm/formlog/internal/logging"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tidwall/sjson"
)

// ErrInvalidSubmission is returned for submissions that cannot be logged.
var ErrInvalidSubmission = errors.New("invalid submission")

// dateLayouts are the accepted layouts for submitted date strings.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// LogSubmission normalizes the submitted values of a form run and stores them
// as a new entry.
func (s *Service) LogSubmission(ctx context.Context, sub Submission) (Entry, error) {
	if strings.TrimSpace(sub.Form.Identifier) == "" {
		return Entry{}, fmt.Errorf("%w: form identifier is required", ErrInvalidSubmission)
	}
	if sub.PageID < 0 || sub.PageID > math.MaxInt32 {
		return Entry{}, fmt.Errorf("%w: pageId %d out of range", ErrInvalidSubmission, sub.PageID)
	}

	data, err := buildData(sub.Form.Elements, sub.Values)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	vars, err := buildFinisherVariables(sub.Form.LogOptions(), sub.FinisherVariables)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}

	row, err := s.store.InsertEntry(ctx, db.InsertEntryParams{
		ID:                pgtype.UUID{Bytes: s.newID(), Valid: true},
		Pid:               int32(sub.PageID),
		Identifier:        sub.Form.Identifier,
		Language:          ToPgText(sub.Language),
		Data:              data,
		FinisherVariables: vars,
		CreatedAt:         ToPgTimestamptz(s.now()),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("insert entry: %w", err)
	}

	entry := entryFromRow(row)
	s.metrics.SubmissionLogged(entry.Identifier)
	logging.FromContext(ctx).Info("submission logged",
		"form", entry.Identifier,
		"entry_id", entry.ID,
		"page_id", entry.PageID,
	)
	return entry, nil
}

// buildData renders submitted values into a JSON object in element order.
// Values without a matching element are not logged.
func buildData(elements []FormElement, values map[string]any) ([]byte, error) {
	doc := []byte("{}")
	for _, el := range elements {
		value, ok := values[el.Identifier]
		if !ok {
			continue
		}

		var err error
		doc, err = sjson.SetBytes(doc, escapeKey(el.Identifier), normalizeValue(el, value))
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", el.Identifier, err)
		}
	}
	return doc, nil
}

// buildFinisherVariables selects the configured variable paths of each
// finisher. Paths are stored as literal keys; missing variables are null.
func buildFinisherVariables(opts FinisherOptions, stores map[string]any) ([]byte, error) {
	finishers := make([]string, 0, len(opts.FinisherVariables))
	for id := range opts.FinisherVariables {
		finishers = append(finishers, id)
	}
	sort.Strings(finishers)

	var accessor export.PathAccessor
	doc := []byte("{}")
	for _, id := range finishers {
		for _, path := range opts.FinisherVariables[id] {
			value, _ := accessor.Get(stores[id], path)

			var err error
			doc, err = sjson.SetBytes(doc, escapeKey(id)+"."+escapeKey(path), value)
			if err != nil {
				return nil, fmt.Errorf("finisher variable %s.%s: %w", id, path, err)
			}
		}
	}
	return doc, nil
}

func normalizeValue(el FormElement, value any) any {
	switch el.Type {
	case ElementDate, ElementDatePicker:
		t, ok := parseDate(value)
		if !ok {
			return value
		}
		return export.FormatDateTime(t, stringProperty(el.Properties, "displayFormat", DefaultDateDisplayFormat))

	case ElementFileUpload, ElementImageUpload:
		name := uploadedFileName(value)
		if name == "" {
			return nil
		}
		return export.FileValue(name)
	}
	return value
}

func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		v = strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func uploadedFileName(value any) string {
	switch v := value.(type) {
	case export.FileReference:
		return v.FileName()
	case map[string]any:
		name, _ := v["name"].(string)
		return name
	case string:
		return v
	}
	return ""
}

func stringProperty(props map[string]any, key, fallback string) string {
	if s, ok := props[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// escapeKey makes key a single literal sjson path component.
func escapeKey(key string) string {
	var b strings.Builder
	if isIndexLike(key) {
		b.WriteByte(':')
	} else if strings.HasPrefix(key, ":") {
		b.WriteByte('\\')
	}
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '|', '#', '@', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}

func isIndexLike(key string) bool {
	if key == "-1" {
		return true
	}
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	return true
}
