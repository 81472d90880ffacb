// internal/workers/loan/index-evaluation/config.go
package indexevaluation

import "time"

type Config struct {
	Index   string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Index:   "loan-evaluations",
		Timeout: 30 * time.Second,
	}
}
