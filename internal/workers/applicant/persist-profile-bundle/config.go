// internal/workers/applicant/persist-profile-bundle/config.go
package persistprofilebundle

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
