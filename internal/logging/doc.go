// Package logging builds the slog loggers used across dupefinder: a console
// handler with key=value output for terminals and activity.log, a JSON
// handler for machine consumption, and shared attribute helpers.
package logging
