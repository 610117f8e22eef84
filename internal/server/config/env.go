package config

import (
	"os"
	"strconv"
)

// Recognized environment variables.
const (
	EnvDatabaseURL      = "DATABASE_URL"
	EnvJWTSecret        = "JWT_SECRET"
	EnvSMTPServer       = "SMTP_SERVER"
	EnvSMTPPort         = "SMTP_PORT"
	EnvSMTPUsername     = "SMTP_USERNAME"
	EnvSMTPPassword     = "SMTP_PASSWORD"
	EnvSchedulerRunTime = "SCHEDULER_RUN_TIME"
	EnvAddress          = "ADDRESS"
)

// parseEnv overlays Config fields from environment variables. Unset variables
// leave the current value untouched.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(EnvDatabaseURL); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(EnvJWTSecret); ok {
		config.JWTSecret = v
	}
	if v, ok := os.LookupEnv(EnvSMTPServer); ok {
		config.SMTPServer = v
	}
	if v, ok := os.LookupEnv(EnvSMTPPort); ok {
		if port, err := strconv.Atoi(v); err == nil {
			config.SMTPPort = port
		}
	}
	if v, ok := os.LookupEnv(EnvSMTPUsername); ok {
		config.SMTPUsername = v
	}
	if v, ok := os.LookupEnv(EnvSMTPPassword); ok {
		config.SMTPPassword = v
	}
	if v, ok := os.LookupEnv(EnvSchedulerRunTime); ok {
		config.SchedulerSpec = v
	}
	if v, ok := os.LookupEnv(EnvAddress); ok {
		config.EndpointAddr = v
	}
}
