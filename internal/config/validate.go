package config

import (
	"errors"
	"fmt"
)

// maxSourceID bounds source identifiers to the width the catalog stores them at.
const maxSourceID = 255

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIndexing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateSources()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateIndexing() error {
	if c.Indexing.Workers < 0 {
		return errors.New("indexing.workers must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateSources() error {
	seen := make(map[int64]string, len(c.Sources))
	for _, src := range c.Sources {
		if src.ID < 0 || src.ID > maxSourceID {
			return fmt.Errorf("source %q: id must be between 0 and %d", src.Name, maxSourceID)
		}
		if other, dup := seen[src.ID]; dup {
			return fmt.Errorf("sources %q and %q share id %d", other, src.Name, src.ID)
		}
		seen[src.ID] = src.Name

		switch src.Kind {
		case SourceLocal:
			if src.Path == "" {
				return fmt.Errorf("source %q: path must be set for local sources", src.Name)
			}
		case SourceRemote:
			if src.Address == "" {
				return fmt.Errorf("source %q: address must be set for remote sources", src.Name)
			}
		default:
			return fmt.Errorf("source %q: unsupported kind %q", src.Name, src.Kind)
		}
	}
	return nil
}
