// internal/models/loan.go
package models

// Loan is the persisted loan request row. TermMonths is what the
// applicant asked for on the form (6..120); the feature pipeline works
// in years and converts at the evaluation boundary.
type Loan struct {
	ID           string  `json:"id"`
	ApplicantID  string  `json:"applicantId"`
	LoanAmount   float64 `json:"loanAmount"`
	TermMonths   int     `json:"termMonths"`
	AnnualIncome float64 `json:"annualIncome"`
	Purpose      string  `json:"purpose,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// Loan statuses.
const (
	LoanStatusSubmitted = "submitted"
	LoanStatusApproved  = "approved"
	LoanStatusRejected  = "rejected"
	LoanStatusReview    = "review"
)
