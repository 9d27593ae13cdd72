package config

import "runtime"

const (
	defaultRPFCLIBinary       = "rpf-cli"
	defaultVGMStreamBinary    = "vgmstream-cli"
	defaultToolTimeoutSeconds = 1800
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
	defaultWorkDirName        = ".gtradio"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		RPFCLIBinary:       defaultRPFCLIBinary,
		VGMStreamBinary:    defaultVGMStreamBinary,
		ToolTimeoutSeconds: defaultToolTimeoutSeconds,
		Jobs:               runtime.NumCPU(),
		LogLevel:           defaultLogLevel,
		LogFormat:          defaultLogFormat,
		LogRetentionDays:   defaultLogRetentionDays,
	}
}
