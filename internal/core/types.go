package core

import (
	"encoding/json"
	"time"
)

// Element types with special normalization when a submission is logged.
const (
	ElementDate        = "Date"
	ElementDatePicker  = "DatePicker"
	ElementFileUpload  = "FileUpload"
	ElementImageUpload = "ImageUpload"
)

// LogFinisherIdentifier names the finisher whose options configure logging.
const LogFinisherIdentifier = "LogFormData"

// DefaultDateDisplayFormat is used for Date elements without a displayFormat property.
const DefaultDateDisplayFormat = "d.m.Y"

// Entry is one logged form submission.
type Entry struct {
	ID                string          `json:"id"`
	PageID            int             `json:"pageId"`
	Identifier        string          `json:"identifier"`
	Language          string          `json:"language,omitempty"`
	Data              json.RawMessage `json:"data"`

	// FinisherVariables is always a JSON object keyed by finisher identifier.
	// A form without logged variables stores {}, never an empty array.
	FinisherVariables json.RawMessage `json:"finisherVariables"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// FormElement is a single field of a form definition.
type FormElement struct {
	Identifier string         `json:"identifier" yaml:"identifier"`
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// FinisherOptions holds the options of the logging finisher.
type FinisherOptions struct {
	// FinisherVariables maps a finisher identifier to the variable paths to log.
	FinisherVariables map[string][]string `json:"finisherVariables,omitempty" yaml:"finisherVariables,omitempty"`
}

// FinisherDefinition is one finisher attached to a form.
type FinisherDefinition struct {
	Identifier string          `json:"identifier" yaml:"identifier"`
	Options    FinisherOptions `json:"options" yaml:"options"`
}

// FormDefinition describes a submitted form.
type FormDefinition struct {
	Identifier string               `json:"identifier" yaml:"identifier"`
	Elements   []FormElement        `json:"elements" yaml:"elements"`
	Finishers  []FinisherDefinition `json:"finishers,omitempty" yaml:"finishers,omitempty"`
}

// LogOptions returns the options of the logging finisher, or zero options if
// the form has none.
func (d FormDefinition) LogOptions() FinisherOptions {
	for _, f := range d.Finishers {
		if f.Identifier == LogFinisherIdentifier {
			return f.Options
		}
	}
	return FinisherOptions{}
}

// Submission is a completed form run ready to be logged.
type Submission struct {
	PageID   int            `json:"pageId"`
	Language string         `json:"language,omitempty"`
	Form     FormDefinition `json:"form"`

	// Values holds submitted values keyed by element identifier.
	Values map[string]any `json:"values"`

	// FinisherVariables holds the variables each finisher produced, keyed by
	// finisher identifier.
	FinisherVariables map[string]any `json:"finisherVariables,omitempty"`
}

// EntryFilter narrows entry listings and exports.
type EntryFilter struct {
	Identifier string
	PageID     *int
	Since      time.Time
	Until      time.Time
}

// EntryPage is one page of an entry listing.
type EntryPage struct {
	Entries  []Entry `json:"entries"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// TotalPages returns the number of pages for the listing.
func (p EntryPage) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
