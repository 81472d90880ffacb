// internal/workers/scoring/score-feature-vector/config.go
package scorefeaturevector

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
