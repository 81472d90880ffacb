// internal/workers/loan/evaluate-loan-eligibility/config.go
package evaluateloaneligibility

import "time"

type Config struct {
	Timeout time.Duration

	// Fallbacks when rule_config has no row and the cache is cold.
	// MinIncome and UnemployedMinOtherIncome are monthly figures.
	AnnualInterestRate       float64
	MinIncome                float64
	UnemployedMinOtherIncome float64
	MaxDebtRatio             float64

	CacheKey string
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:                  30 * time.Second,
		AnnualInterestRate:       0.12,
		MinIncome:                50000,
		UnemployedMinOtherIncome: 25000,
		MaxDebtRatio:             0.40,
		CacheKey:                 "rule-config",
		CacheTTL:                 5 * time.Minute,
	}
}
