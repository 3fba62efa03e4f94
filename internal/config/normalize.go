package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeSearch()
	if c.Editor.SaveDebounceMS <= 0 {
		c.Editor.SaveDebounceMS = defaultSaveDebounceMS
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeSearch() {
	c.Search.Mode = strings.ToLower(strings.TrimSpace(c.Search.Mode))
	if c.Search.Mode == "" {
		c.Search.Mode = defaultSearchMode
	}
	if c.Search.FuzzyThreshold == 0 {
		c.Search.FuzzyThreshold = defaultFuzzyThreshold
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
