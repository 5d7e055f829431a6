package config

import "time"

const (
	DefaultAPIBase  = "https://hotdesk.cat.com/api"
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultCredentialsDB = "hotdesk.db"
	DefaultSessionTTL    = 12 * time.Hour

	DefaultUpstreamTimeout = 15 * time.Second
	DefaultRequestTimeout  = 30 * time.Second

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
