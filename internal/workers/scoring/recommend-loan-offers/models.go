// internal/workers/scoring/recommend-loan-offers/models.go
package recommendloanoffers

type Input struct {
	ApplicantID    string                 `json:"applicantId"`
	LoanID         string                 `json:"loanId"`
	ApplicantInput map[string]interface{} `json:"applicantInput"`
}

type Output struct {
	Prediction    string                 `json:"prediction"`
	Approved      bool                   `json:"approved"`
	Raw           map[string]interface{} `json:"recommendation,omitempty"`
	Degraded      bool                   `json:"recommendationDegraded"`
	RecommendedAt string                 `json:"recommendedAt"` // ISO 8601
}
