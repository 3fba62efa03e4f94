// Command notefind searches and edits meeting notes from the terminal.
//
// The find, replace and replace-all commands work on a notes file in one
// shot; view opens the interactive viewer with its find and replace panel,
// debounced saves and external change tracking. Transcripts stored as JSON
// can be edited with --transcript and exported with export.
package main
