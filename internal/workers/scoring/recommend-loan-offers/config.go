// internal/workers/scoring/recommend-loan-offers/config.go
package recommendloanoffers

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 20 * time.Second,
	}
}
