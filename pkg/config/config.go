// Package config loads service configuration from the environment with
// viper, applying sensible local-development defaults.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings.
type Config struct {
	ServiceName string
	Addr        string
	TLSCert     string
	TLSKey      string
	DatabaseURL string
	RedisAddr   string
	OTELHost    string
	LogLevel    string
	SessionTTL  time.Duration

	v *viper.Viper
}

// Load reads configuration from the environment. Every key has a default
// so the service starts with no environment at all.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_NAME", "storefront")
	v.SetDefault("ADDR", ":8443")
	v.SetDefault("TLS_CERT", "certs/server.crt")
	v.SetDefault("TLS_KEY", "certs/server.key")
	v.SetDefault("DATABASE_URL", "postgres://localhost/storefront?sslmode=disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("OTEL_HOST", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_TTL", time.Hour)
	v.SetDefault("TAX_RATE", 0.10)

	return &Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		Addr:        v.GetString("ADDR"),
		TLSCert:     v.GetString("TLS_CERT"),
		TLSKey:      v.GetString("TLS_KEY"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		OTELHost:    v.GetString("OTEL_HOST"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		SessionTTL:  v.GetDuration("SESSION_TTL"),
		v:           v,
	}
}

// TaxRate returns the current tax rate as a ratio (0.10 means 10%). It is
// read from the environment on every call so the rate can change without a
// restart; totals are recomputed against the live value on each request.
func (c *Config) TaxRate() float64 {
	return c.v.GetFloat64("TAX_RATE")
}
