package config

import (
	"strings"
)

// normalize expands and absolutizes every configured path and fills in
// per-source defaults so validation can assume canonical values.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Indexing.WatchDebounceSeconds <= 0 {
		c.Indexing.WatchDebounceSeconds = defaultWatchDebounceSeconds
	}

	for i := range c.Sources {
		src := &c.Sources[i]
		src.Name = strings.TrimSpace(src.Name)
		src.Address = strings.TrimSpace(src.Address)
		if src.Kind == "" {
			src.Kind = SourceLocal
		}
		src.Kind = SourceKind(strings.ToLower(string(src.Kind)))
		if src.Kind == SourceLocal && src.Path != "" {
			if src.Path, err = expandPath(src.Path); err != nil {
				return err
			}
		}
	}
	return nil
}
