package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/JonMunkholm/formlog/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logForm(elements ...FormElement) FormDefinition {
	return FormDefinition{
		Identifier: "LoggerFinisherTest",
		Elements:   elements,
		Finishers:  []FinisherDefinition{{Identifier: LogFinisherIdentifier}},
	}
}

func TestLogSubmission_Data(t *testing.T) {
	tests := []struct {
		name     string
		elements []FormElement
		values   map[string]any
		wantData string
	}{
		{
			name:     "basic",
			elements: []FormElement{{Identifier: "name", Type: "Text"}},
			values:   map[string]any{"name": "Tester"},
			wantData: `{"name":"Tester"}`,
		},
		{
			name:     "date uses default display format",
			elements: []FormElement{{Identifier: "date", Type: ElementDate}},
			values:   map[string]any{"date": "2022-02-07"},
			wantData: `{"date":"07.02.2022"}`,
		},
		{
			name: "date with custom display format",
			elements: []FormElement{{
				Identifier: "date",
				Type:       ElementDate,
				Properties: map[string]any{"displayFormat": "Y-m-d"},
			}},
			values:   map[string]any{"date": "2022-02-07"},
			wantData: `{"date":"2022-02-07"}`,
		},
		{
			name:     "date picker with time value",
			elements: []FormElement{{Identifier: "date", Type: ElementDatePicker}},
			values:   map[string]any{"date": time.Date(2022, 2, 7, 0, 0, 0, 0, time.UTC)},
			wantData: `{"date":"07.02.2022"}`,
		},
		{
			name:     "unparsable date stored as submitted",
			elements: []FormElement{{Identifier: "date", Type: ElementDate}},
			values:   map[string]any{"date": "next tuesday"},
			wantData: `{"date":"next tuesday"}`,
		},
		{
			name:     "file upload",
			elements: []FormElement{{Identifier: "upload", Type: ElementFileUpload}},
			values: map[string]any{"upload": map[string]any{
				"name": "test.txt",
				"type": "text/plain",
				"size": 20,
			}},
			wantData: `{"upload":{"file":{"name":"test.txt"}}}`,
		},
		{
			name:     "file reference",
			elements: []FormElement{{Identifier: "upload", Type: ElementImageUpload}},
			values:   map[string]any{"upload": export.UploadedFile{Name: "photo.jpg", MimeType: "image/jpeg"}},
			wantData: `{"upload":{"file":{"name":"photo.jpg"}}}`,
		},
		{
			name:     "empty upload is null",
			elements: []FormElement{{Identifier: "upload", Type: ElementFileUpload}},
			values:   map[string]any{"upload": map[string]any{}},
			wantData: `{"upload":null}`,
		},
		{
			name: "element order preserved",
			elements: []FormElement{
				{Identifier: "zip", Type: "Text"},
				{Identifier: "city", Type: "Text"},
				{Identifier: "accept", Type: "Checkbox"},
			},
			values:   map[string]any{"city": "Mainz", "zip": "55116", "accept": true},
			wantData: `{"zip":"55116","city":"Mainz","accept":true}`,
		},
		{
			name:     "values without element are dropped",
			elements: []FormElement{{Identifier: "name", Type: "Text"}},
			values:   map[string]any{"name": "Tester", "__currentPage": 1},
			wantData: `{"name":"Tester"}`,
		},
		{
			name:     "identifiers with path characters stay literal",
			elements: []FormElement{{Identifier: "a.b", Type: "Text"}, {Identifier: "10", Type: "Text"}},
			values:   map[string]any{"a.b": "x", "10": "y"},
			wantData: `{"a.b":"x","10":"y"}`,
		},
		{
			name:     "multi select",
			elements: []FormElement{{Identifier: "colors", Type: "MultiSelect"}},
			values:   map[string]any{"colors": []string{"red", "blue"}},
			wantData: `{"colors":["red","blue"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			svc := NewService(store)

			entry, err := svc.LogSubmission(context.Background(), Submission{
				PageID: 123,
				Form:   logForm(tt.elements...),
				Values: tt.values,
			})
			require.NoError(t, err)

			assert.JSONEq(t, tt.wantData, string(entry.Data))
			assert.Equal(t, tt.wantData, string(store.entries[0].Data), "stored data keeps member order")
			assert.Equal(t, "{}", string(entry.FinisherVariables))
		})
	}
}

func TestLogSubmission_FinisherVariables(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	form := FormDefinition{
		Identifier: "LoggerFinisherTest",
		Elements:   []FormElement{{Identifier: "name", Type: "Text"}},
		Finishers: []FinisherDefinition{
			{Identifier: "SaveToDatabase"},
			{
				Identifier: LogFinisherIdentifier,
				Options: FinisherOptions{FinisherVariables: map[string][]string{
					"SaveToDatabase": {"insertedUids.0"},
				}},
			},
		},
	}

	entry, err := svc.LogSubmission(context.Background(), Submission{
		PageID: 123,
		Form:   form,
		Values: map[string]any{"name": "Tester"},
		FinisherVariables: map[string]any{
			"SaveToDatabase": map[string]any{"insertedUids": []int{124}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"name":"Tester"}`, string(entry.Data))
	assert.Equal(t, `{"SaveToDatabase":{"insertedUids.0":124}}`, string(entry.FinisherVariables))
}

func TestLogSubmission_MissingFinisherVariableIsNull(t *testing.T) {
	svc := NewService(&memStore{})

	form := logForm(FormElement{Identifier: "name", Type: "Text"})
	form.Finishers[0].Options.FinisherVariables = map[string][]string{
		"EmailToReceiver": {"messageId"},
	}

	entry, err := svc.LogSubmission(context.Background(), Submission{
		Form:   form,
		Values: map[string]any{"name": "Tester"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"EmailToReceiver":{"messageId":null}}`, string(entry.FinisherVariables))
}

func TestLogSubmission_EntryMetadata(t *testing.T) {
	store := &memStore{}
	created := time.Date(2022, 2, 7, 10, 30, 0, 0, time.UTC)
	svc := NewService(store, WithClock(fixedClock(created, 0)))

	entry, err := svc.LogSubmission(context.Background(), Submission{
		PageID:   123,
		Language: "de",
		Form:     logForm(FormElement{Identifier: "name", Type: "Text"}),
		Values:   map[string]any{"name": "Tester"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 123, entry.PageID)
	assert.Equal(t, "LoggerFinisherTest", entry.Identifier)
	assert.Equal(t, "de", entry.Language)
	assert.True(t, created.Equal(entry.CreatedAt))

	got, err := svc.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestLogSubmission_Errors(t *testing.T) {
	t.Run("missing form identifier", func(t *testing.T) {
		store := &memStore{}
		_, err := NewService(store).LogSubmission(context.Background(), Submission{})

		assert.ErrorIs(t, err, ErrInvalidSubmission)
		assert.Empty(t, store.entries)
	})

	t.Run("empty element identifier", func(t *testing.T) {
		_, err := NewService(&memStore{}).LogSubmission(context.Background(), Submission{
			Form:   logForm(FormElement{Identifier: "", Type: "Text"}),
			Values: map[string]any{"": "x"},
		})
		assert.ErrorIs(t, err, ErrInvalidSubmission)
	})

	for _, pageID := range []int{-5, 4294967297 + 122} {
		t.Run(fmt.Sprintf("page id %d", pageID), func(t *testing.T) {
			store := &memStore{}
			_, err := NewService(store).LogSubmission(context.Background(), Submission{
				PageID: pageID,
				Form:   logForm(FormElement{Identifier: "name", Type: "Text"}),
				Values: map[string]any{"name": "Tester"},
			})

			assert.ErrorIs(t, err, ErrInvalidSubmission)
			assert.Empty(t, store.entries)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		store := &memStore{insertErr: errStoreDown}
		_, err := NewService(store).LogSubmission(context.Background(), Submission{
			Form:   logForm(FormElement{Identifier: "name", Type: "Text"}),
			Values: map[string]any{"name": "Tester"},
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, errStoreDown))
		assert.Equal(t, "DB002", MapError(err).Code)
	})
}

func TestEscapeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "name", want: "name"},
		{in: "insertedUids.0", want: `insertedUids\.0`},
		{in: "0", want: ":0"},
		{in: "-1", want: ":-1"},
		{in: ":tag", want: `\:tag`},
		{in: "a*b?c", want: `a\*b\?c`},
		{in: `back\slash`, want: `back\\slash`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeKey(tt.in))
		})
	}
}
