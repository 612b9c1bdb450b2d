// Package config holds shared configuration defaults.
package config

// Default paths and tuning values.
const (
	DefaultInputDir   = "."
	DefaultOutputDir  = "."
	DefaultStateFile  = ".dwp/state.db"
	DefaultThreshold  = 85
	DefaultHeaderScan = 20
	DefaultEnv        = "dev"
	DefaultOutput     = "auto"
)
