package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
)

type Config struct {
	APIBase string
	Port    string

	CredentialsDB string
	SessionTTL    time.Duration

	UpstreamTimeout time.Duration
	RequestTimeout  time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	// A missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	return &Config{
		APIBase: getEnvStr(EnvAPIBase, DefaultAPIBase),
		Port:    getEnvStr(EnvPort, DefaultPort),

		CredentialsDB: getEnvStr(EnvCredentialsDB, DefaultCredentialsDB),
		SessionTTL:    getEnvDuration(EnvSessionTTL, DefaultSessionTTL),

		UpstreamTimeout: getEnvDuration(EnvUpstreamTimeout, DefaultUpstreamTimeout),
		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q", EnvAPIBase, c.APIBase)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid %s: %q", EnvPort, c.Port)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvUpstreamTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvRequestTimeout)
	}
	return nil
}

func (c *Config) LogConfiguration() {
	c.Log.Info("Configuration loaded",
		"api_base", c.APIBase,
		"port", c.Port,
		"credentials_db", c.CredentialsDB,
		"session_ttl", c.SessionTTL,
		"upstream_timeout", c.UpstreamTimeout,
		"request_timeout", c.RequestTimeout,
	)
}

func getEnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
