package config

// Application constants
const (
	AppName    = "Influencer Campaign Dashboard"
	AppVersion = "1.0.0"

	// File paths, relative to the base directory
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"

	// Session defaults
	DefaultMaxSessions    = 256
	DefaultViewCacheSize  = 512
	DefaultMaxUploadBytes = 32 << 20
	DefaultTopN           = 10

	// Generator settings
	GeneratorSeed       = 42
	GeneratorLogFile    = "generator.log"
	DashboardLogFile    = "dashboard.log"
	CurrencySymbol      = "₹"
	MsgDatasetGenerated = "All 4 datasets generated and saved as CSV."
)
