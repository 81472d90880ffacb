// internal/workers/loan/evaluate-loan-eligibility/thresholds.go
package evaluateloaneligibility

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Thresholds are the tunable rule constants. They live in the
// rule_config table as one JSONB row and are cached in Redis.
type Thresholds struct {
	AnnualInterestRate       float64 `json:"annual_interest_rate"`
	MinIncome                float64 `json:"min_income"`
	UnemployedMinOtherIncome float64 `json:"unemployed_min_other_income"`
	MaxDebtRatio             float64 `json:"max_debt_ratio"`
}

func (h *Handler) defaultThresholds() Thresholds {
	return Thresholds{
		AnnualInterestRate:       h.config.AnnualInterestRate,
		MinIncome:                h.config.MinIncome,
		UnemployedMinOtherIncome: h.config.UnemployedMinOtherIncome,
		MaxDebtRatio:             h.config.MaxDebtRatio,
	}
}

// loadThresholds resolves cache -> database -> config defaults. Every
// failure along the way is a Warn, never a job failure.
func (h *Handler) loadThresholds(ctx context.Context) Thresholds {
	if h.cache != nil {
		cached, err := h.cache.Get(ctx, h.config.CacheKey).Result()
		if err == nil {
			var th Thresholds
			if jsonErr := json.Unmarshal([]byte(cached), &th); jsonErr == nil {
				return th
			}
			h.logger.Warn("cached rule config unreadable, falling through", map[string]interface{}{
				"key": h.config.CacheKey,
			})
		} else if err != redis.Nil {
			h.logger.Warn("rule config cache read failed", map[string]interface{}{
				"error": err,
			})
		}
	}

	var raw []byte
	err := h.db.QueryRowContext(ctx, `SELECT config FROM rule_config LIMIT 1`).Scan(&raw)
	if err != nil {
		h.logger.Warn("rule config query failed, using defaults", map[string]interface{}{
			"error": err,
		})
		return h.defaultThresholds()
	}

	th := h.defaultThresholds()
	if err := json.Unmarshal(raw, &th); err != nil {
		h.logger.Warn("rule config row unreadable, using defaults", map[string]interface{}{
			"error": err,
		})
		return h.defaultThresholds()
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, h.config.CacheKey, raw, h.config.CacheTTL).Err(); err != nil {
			h.logger.Warn("rule config cache write failed", map[string]interface{}{
				"error": err,
			})
		}
	}

	return th
}
