package config

const (
	defaultDataDir              = "~/.local/share/aria"
	defaultLogDir               = "~/.local/share/aria/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultWatchDebounceSeconds = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Indexing: Indexing{
			Workers:              0,
			WatchDebounceSeconds: defaultWatchDebounceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
