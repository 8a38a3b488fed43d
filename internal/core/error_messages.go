package core

// # Error Codes Reference
//
// User-facing error messages carry a code for support reference. Codes are
// grouped by category:
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Empty column set: The export profile defines no columns
//	CFG002 - Duplicate sort key: Two columns share a sort key
//	CFG003 - Empty property: A column has no property path
//	CFG004 - Unknown format: The export format is not supported
//	CFG005 - Invalid basename: The file basename contains a path
//	CFG006 - Invalid columns: The column definition cannot be parsed
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Write failed: The export file could not be written
//	EXP002 - Profile not found: No export profile with this name
//	EXP003 - Read failed: Entries could not be read during export
//
// # Entry Errors (ENT001-ENT099)
//
//	ENT001 - Entry not found
//	ENT002 - Invalid submission
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key          Patterns: "duplicate key"
//	DB002 - Connection refused     Patterns: "connection refused"
//	DB003 - Connection reset       Patterns: "connection reset"
//	DB004 - Timeout                Patterns: "timeout"
//	DB005 - Deadlock               Patterns: "deadlock"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled (context.Canceled)
//	REQ002 - Request timeout (context.DeadlineExceeded)
//
// # Default Error (ERR000)
//
// Returned when nothing matches. Check application logs for the technical error.
//
// Typed errors are matched first with errors.Is / errors.As. Remaining errors
// are matched case-insensitively against patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/formlog/internal/export"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// configurationMessages maps export configuration error kinds to user messages.
var configurationMessages = map[string]UserMessage{
	export.KindEmptyColumnSet: {
		Message: "The export profile defines no columns",
		Action:  "Add at least one column to the export profile",
		Code:    "CFG001",
	},
	export.KindDuplicateSortKey: {
		Message: "Two export columns share the same sort key",
		Action:  "Give every column a unique sort key",
		Code:    "CFG002",
	},
	export.KindEmptyProperty: {
		Message: "An export column has no property path",
		Action:  "Set the property of every column",
		Code:    "CFG003",
	},
	export.KindUnknownFormat: {
		Message: "The export format is not supported",
		Action:  "Use csv or xlsx",
		Code:    "CFG004",
	},
	export.KindInvalidBasename: {
		Message: "The export file name is invalid",
		Action:  "Use a file basename without directories",
		Code:    "CFG005",
	},
	export.KindInvalidColumnsDoc: {
		Message: "The export column definition cannot be read",
		Action:  "Define columns as a mapping of sort keys or a list",
		Code:    "CFG006",
	},
}

// sentinelMessages maps sentinel errors to user messages, checked with errors.Is.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{
		target: ErrProfileNotFound,
		msg: UserMessage{
			Message: "Export profile not found",
			Action:  "Check the profile name",
			Code:    "EXP002",
		},
	},
	{
		target: ErrEntryNotFound,
		msg: UserMessage{
			Message: "Log entry not found",
			Action:  "The entry may have been removed by retention",
			Code:    "ENT001",
		},
	},
	{
		target: ErrInvalidSubmission,
		msg: UserMessage{
			Message: "The submission could not be logged",
			Action:  "Check the form definition and submitted values",
			Code:    "ENT002",
		},
	},
	{
		target: ErrInvalidFilter,
		msg: UserMessage{
			Message: "The entry filter is invalid",
			Action:  "Use YYYY-MM-DD or RFC 3339 dates and a numeric page id",
			Code:    "ENT003",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Narrow the date range or try again later",
			Code:    "REQ002",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "read records",
		msg: UserMessage{
			Message: "Entries could not be read during export",
			Action:  "Please try again",
			Code:    "EXP003",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The submission is too large",
			Action:  "Reduce the size of the submitted values",
			Code:    "REQ003",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "An entry with this ID already exists",
			Action:  "Submit the form again",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB004",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors are checked first, then known patterns. If nothing matches, a
// generic fallback message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var cfgErr *export.ConfigurationError
	if errors.As(err, &cfgErr) {
		if msg, ok := configurationMessages[cfgErr.Kind]; ok {
			return msg
		}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	var ioErr *export.IOError
	if errors.As(err, &ioErr) {
		return UserMessage{
			Message: "The export file could not be written",
			Action:  "Check that the output directory exists and is writable",
			Code:    "EXP001",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
