package config

const (
	defaultArchiveDir             = "~/.local/share/aircheck/archive"
	defaultUnmatchedDir           = "unmatched"
	defaultLogDir                 = "~/.local/share/aircheck/logs"
	defaultAPIBind                = "127.0.0.1:7337"
	defaultSegmentDuration        = 300
	defaultShutdownGraceSeconds   = 5
	defaultSweepIntervalSeconds   = 60
	defaultAMQPPort               = 5672
	defaultAMQPExchange           = "aircheck"
	defaultAMQPQueue              = "new-segments"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveDir:   defaultArchiveDir,
			UnmatchedDir: defaultUnmatchedDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Station: Station{
			SegmentDurationSeconds: defaultSegmentDuration,
		},
		Capture: Capture{
			ShutdownGraceSeconds: defaultShutdownGraceSeconds,
		},
		Placement: Placement{
			SweepIntervalSeconds: defaultSweepIntervalSeconds,
		},
		AMQP: AMQP{
			Port:     defaultAMQPPort,
			Exchange: defaultAMQPExchange,
			Queue:    defaultAMQPQueue,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
