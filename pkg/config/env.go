package config

const (
	EnvAPIBase  = "HOTDESK_API_BASE"
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvCredentialsDB = "CREDENTIALS_DB"
	EnvSessionTTL    = "SESSION_TTL"

	EnvUpstreamTimeout = "UPSTREAM_TIMEOUT"
	EnvRequestTimeout  = "REQUEST_TIMEOUT"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
