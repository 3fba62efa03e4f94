package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/notefind/internal/config"
	"github.com/kk-code-lab/notefind/internal/document"
	"github.com/kk-code-lab/notefind/internal/logging"
	"github.com/kk-code-lab/notefind/internal/search"
	"github.com/kk-code-lab/notefind/internal/store"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// logger builds the command logger. Records go to logging.file when set and
// to fallback otherwise.
func (c *commandContext) logger(fallback io.Writer) (*slog.Logger, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return logging.NewFromConfig(cfg, fallback, c.verbose())
}

func (c *commandContext) finder(logger *slog.Logger) *search.Finder {
	opts := []search.FinderOption{search.WithLogger(logger)}
	if c.config != nil {
		opts = append(opts, search.WithFuzzyThreshold(c.config.Search.FuzzyThreshold))
	}
	return search.NewFinder(opts...)
}

// withLogger runs fn with a logger writing to the command's stderr.
func (c *commandContext) withLogger(cmd *cobra.Command, fn func(*slog.Logger) error) error {
	logger, closer, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	return fn(logger)
}

// loadDocument reads a notes file, or a structured editor document when
// jsonDoc is set.
func loadDocument(path string, jsonDoc bool, logger *slog.Logger) (*document.Document, error) {
	if !jsonDoc {
		text, err := store.NewFileStore(path, logger).Load()
		if err != nil {
			return nil, err
		}
		return document.Parse(text), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()
	return document.DecodeJSON(file)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
