package export

import (
	"errors"
	"fmt"
)

// ErrRowsConsumed is returned when a row sequence is ranged over a second time.
var ErrRowsConsumed = errors.New("row sequence already consumed")

// Configuration error kinds.
const (
	KindEmptyColumnSet    = "empty column set"
	KindDuplicateSortKey  = "duplicate sort key"
	KindEmptyProperty     = "empty property path"
	KindUnknownFormat     = "unknown export format"
	KindInvalidBasename   = "invalid file basename"
	KindInvalidColumnsDoc = "invalid column definition"
)

// ConfigurationError reports an export configuration that cannot produce output.
// It is raised before any row is written.
type ConfigurationError struct {
	Kind   string
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Detail == "" {
		return "export configuration: " + e.Kind
	}
	return fmt.Sprintf("export configuration: %s: %s", e.Kind, e.Detail)
}

// IOError reports a failure opening or writing the export destination.
type IOError struct {
	Op   string // "create", "write", "flush", "rename", ...
	Path string // Empty when writing to a stream
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("export %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsIOError reports whether err is or wraps an IOError.
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}
