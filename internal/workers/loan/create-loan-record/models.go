// internal/workers/loan/create-loan-record/models.go
package createloanrecord

type Input struct {
	ApplicantID    string  `json:"applicantId"`
	LoanAmount     float64 `json:"loanAmount"`
	TermMonths     int     `json:"termMonths"`
	AnnualIncome   float64 `json:"annualIncome"`
	Purpose        string  `json:"purpose"`
	IdempotencyKey string  `json:"idempotencyKey"`
}

type Output struct {
	LoanID     string `json:"loanId"`
	LoanStatus string `json:"loanStatus"`
	Replayed   bool   `json:"replayed"`
	CreatedAt  string `json:"createdAt"` // ISO 8601
}
