// internal/workers/scoring/score-feature-vector/models.go
package scorefeaturevector

import "loan-workers/internal/models"

type Input struct {
	ApplicantID      string                  `json:"applicantId"`
	LoanID           string                  `json:"loanId"`
	ApplicantProfile models.ApplicantProfile `json:"applicantProfile"`
}

type Output struct {
	Inference map[string]interface{} `json:"inference"`
	Degraded  bool                   `json:"inferenceDegraded"`
	ScoredAt  string                 `json:"scoredAt"` // ISO 8601
}
