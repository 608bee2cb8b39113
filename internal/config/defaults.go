package config

const (
	defaultConfigPath           = "~/.config/logmirror/config.toml"
	defaultTargetDir            = "~/.local/share/logmirror/mirror"
	defaultLogDir               = "~/.local/share/logmirror/logs"
	defaultMaxHistoricalWorkers = 3
	defaultPollInterval         = 60
	defaultPageLines            = 1000
	defaultStallAlertPolls      = 10
	defaultSourceBurst          = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultStatusBind           = "127.0.0.1:7488"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TargetDir: defaultTargetDir,
			LogDir:    defaultLogDir,
		},
		Source: Source{
			Burst: defaultSourceBurst,
		},
		Sync: Sync{
			MaxHistoricalWorkers: defaultMaxHistoricalWorkers,
			PollInterval:         defaultPollInterval,
			PageLines:            defaultPageLines,
			StallAlertPolls:      defaultStallAlertPolls,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Status: Status{
			Bind: defaultStatusBind,
		},
	}
}
