// Package catalog persists the audio catalog in SQLite.
//
// Records are keyed by a content checksum rather than by path, so a file that
// moves or is re-tagged without audio changes resolves to its existing row.
// The package also tracks per-source last-indexed timestamps used by the
// incremental scanner.
package catalog
