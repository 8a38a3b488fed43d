// Package core provides the business logic of the form log.
//
// It sits between transports (HTTP handlers, the CLI) and storage, and has
// no knowledge of either beyond the [EntryStore] interface.
//
// # Submissions
//
// [Service.LogSubmission] turns a completed form run into an [Entry]. Values
// are normalized per element type before they are stored:
//
//   - Date and DatePicker values are rendered with the element's
//     displayFormat property (default d.m.Y).
//   - FileUpload and ImageUpload values become {"file":{"name":...}}.
//   - Everything else is stored as submitted.
//
// Finisher variables selected by the LogFormData finisher options are stored
// under their literal path, so "insertedUids.0" stays a single key.
//
// # Exports
//
// Exports run through named [Profile] values. Each profile carries an
// export.Configuration and a format name; see [Service.Export] and
// [Service.ExportToDir].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError]:
//
//   - CFG001-CFG006: Export configuration errors
//   - EXP001-EXP003: Export runtime errors
//   - ENT001-ENT003: Entry lookup, submission and filter errors
//   - DB001-DB005: Database errors
//   - REQ001-REQ003: Request cancellation, timeouts and body limits
package core
