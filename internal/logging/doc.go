// Package logging configures slog with aria's console and JSON handlers and
// provides the shared attribute helpers used across the repository.
package logging
