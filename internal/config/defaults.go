package config

const (
	defaultLibraryDir              = "~/scores/library"
	defaultStagingDir              = "~/.local/share/scorepack/staging"
	defaultLogDir                  = "~/.local/share/scorepack/logs"
	defaultLogLevel                = "info"
	defaultLogFormat               = "console"
	defaultWriteLockTimeoutSeconds = 10
	defaultMinFreeSpaceGiB         = 1
	defaultQueuePollSeconds        = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Packaging: Packaging{
			WriteLockTimeoutSeconds: defaultWriteLockTimeoutSeconds,
			MinFreeSpaceGiB:         defaultMinFreeSpaceGiB,
		},
		Queue: Queue{
			PollSeconds: defaultQueuePollSeconds,
		},
	}
}
