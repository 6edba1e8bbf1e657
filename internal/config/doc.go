// Package config loads, validates, and normalizes aria's TOML configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/aria/config.toml, then ./aria.toml. Missing files yield the
// built-in defaults so read-only commands work before first-run setup.
package config
