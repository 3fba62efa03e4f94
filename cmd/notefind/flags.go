package main

import (
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/notefind/internal/search"
)

// searchFlags override the [search] defaults for one command.
type searchFlags struct {
	caseSensitive bool
	exact         bool
	fuzzy         bool
	regex         bool
}

func (f *searchFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.caseSensitive, "case-sensitive", "s", false, "Match case exactly")
	cmd.Flags().BoolVar(&f.exact, "exact", false, "Match the query literally")
	cmd.Flags().BoolVar(&f.fuzzy, "fuzzy", false, "Allow approximate matches")
	cmd.Flags().BoolVar(&f.regex, "regex", false, "Treat the query as a regular expression")
	cmd.MarkFlagsMutuallyExclusive("exact", "fuzzy", "regex")
}

func (f *searchFlags) apply(cmd *cobra.Command, cfg search.Config) search.Config {
	if cmd.Flags().Changed("case-sensitive") {
		cfg.CaseSensitive = f.caseSensitive
	}
	switch {
	case f.exact:
		cfg = cfg.WithMode(search.ModeExact)
	case f.fuzzy:
		cfg = cfg.WithMode(search.ModeFuzzy)
	case f.regex:
		cfg = cfg.WithMode(search.ModeRegex)
	}
	return cfg
}
