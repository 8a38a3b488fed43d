package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/formlog/internal/export"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "empty column set",
			err:         &export.ConfigurationError{Kind: export.KindEmptyColumnSet},
			wantCode:    "CFG001",
			wantMessage: "The export profile defines no columns",
		},
		{
			name:        "wrapped duplicate sort key",
			err:         fmt.Errorf("export profile %q: %w", "contact", &export.ConfigurationError{Kind: export.KindDuplicateSortKey}),
			wantCode:    "CFG002",
			wantMessage: "Two export columns share the same sort key",
		},
		{
			name:        "unknown format",
			err:         &export.ConfigurationError{Kind: export.KindUnknownFormat, Detail: "pdf"},
			wantCode:    "CFG004",
			wantMessage: "The export format is not supported",
		},
		{
			name:        "io error",
			err:         &export.IOError{Op: "rename", Path: "/tmp/output.csv", Err: errors.New("permission denied")},
			wantCode:    "EXP001",
			wantMessage: "The export file could not be written",
		},
		{
			name:        "invalid filter",
			err:         fmt.Errorf("%w: since %q", ErrInvalidFilter, "yesterday"),
			wantCode:    "ENT003",
			wantMessage: "The entry filter is invalid",
		},
		{
			name:        "request body too large",
			err:         fmt.Errorf("%w: %w", ErrInvalidSubmission, errors.New("http: request body too large")),
			wantCode:    "ENT002",
			wantMessage: "The submission could not be logged",
		},
		{
			name:        "body limit without wrapping",
			err:         errors.New("http: request body too large"),
			wantCode:    "REQ003",
			wantMessage: "The submission is too large",
		},
		{
			name:        "profile not found",
			err:         fmt.Errorf("%w: nope", ErrProfileNotFound),
			wantCode:    "EXP002",
			wantMessage: "Export profile not found",
		},
		{
			name:        "record source failure",
			err:         fmt.Errorf("read records: %w", errors.New("conn closed")),
			wantCode:    "EXP003",
			wantMessage: "Entries could not be read during export",
		},
		{
			name:        "entry not found",
			err:         fmt.Errorf("%w: 42", ErrEntryNotFound),
			wantCode:    "ENT001",
			wantMessage: "Log entry not found",
		},
		{
			name:        "context canceled",
			err:         fmt.Errorf("export: %w", context.Canceled),
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline beats timeout pattern",
			err:         fmt.Errorf("query timeout: %w", context.DeadlineExceeded),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode:    "DB001",
			wantMessage: "An entry with this ID already exists",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB002",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DEADLOCK detected"),
			wantCode:    "DB005",
			wantMessage: "Database was busy with conflicting operations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error returns empty string", err: nil, want: ""},
		{
			name: "known error formats with code",
			err:  fmt.Errorf("%w: nope", ErrProfileNotFound),
			want: "Export profile not found (Code: EXP002). Check the profile name",
		},
		{
			name: "unknown error formats with default",
			err:  errors.New("mystery"),
			want: "An unexpected error occurred (Code: ERR000). Please try again or contact support",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUserError(tt.err); got != tt.want {
				t.Errorf("FormatUserError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true, want false")
	}
	if !IsUserFacing(ErrEntryNotFound) {
		t.Error("IsUserFacing(ErrEntryNotFound) = false, want true")
	}
	if IsUserFacing(errors.New("mystery")) {
		t.Error("IsUserFacing(mystery) = true, want false")
	}
}
