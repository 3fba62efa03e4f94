package config

const (
	defaultSearchMode     = "exact"
	defaultFuzzyThreshold = 0.4
	defaultSaveDebounceMS = 1000
	defaultWatch          = true
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Search: Search{
			Mode:           defaultSearchMode,
			FuzzyThreshold: defaultFuzzyThreshold,
		},
		Editor: Editor{
			SaveDebounceMS: defaultSaveDebounceMS,
			Watch:          defaultWatch,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
