// internal/models/evaluation.go
package models

// Eligibility outcomes. Loan status maps from these separately
// (pass→approved, fail→rejected, review→review).
const (
	DecisionPass   = "pass"
	DecisionFail   = "fail"
	DecisionReview = "review"
)

// Evaluation is the persisted outcome of an eligibility run.
type Evaluation struct {
	ID               string                 `json:"id"`
	ApplicantID      string                 `json:"applicantId"`
	LoanID           string                 `json:"loanId"`
	Decision         string                 `json:"decision"`
	Score            int                    `json:"score"`
	Reasons          []string               `json:"reasons"`
	EstimatedPayment float64                `json:"estimatedPayment"`
	DebtRatio        float64                `json:"debtRatio"`
	ModelScore       map[string]interface{} `json:"modelScore,omitempty"`
	Recommendation   string                 `json:"recommendation,omitempty"`
	EvaluatedAt      string                 `json:"evaluatedAt"`
}
