// internal/workers/loan/create-loan-record/config.go
package createloanrecord

import "time"

type Config struct {
	Timeout        time.Duration
	IdempotencyTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		IdempotencyTTL: 24 * time.Hour,
	}
}
