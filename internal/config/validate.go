package config

import (
	"errors"
	"fmt"

	"github.com/kk-code-lab/notefind/internal/search"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSearch() error {
	if _, ok := search.ParseMode(c.Search.Mode); !ok {
		return fmt.Errorf("search.mode: unsupported value %q (want exact, fuzzy or regex)", c.Search.Mode)
	}
	if c.Search.FuzzyThreshold <= 0 || c.Search.FuzzyThreshold >= 1 {
		return errors.New("search.fuzzy_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// SearchConfig returns the initial search configuration for a query.
func (c *Config) SearchConfig(query string) search.Config {
	mode, _ := search.ParseMode(c.Search.Mode)
	return search.Config{Query: query, CaseSensitive: c.Search.CaseSensitive}.WithMode(mode)
}
