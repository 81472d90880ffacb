// internal/workers/loan/evaluate-loan-eligibility/models.go
package evaluateloaneligibility

// Input carries the request in the units the rules work in: monthly
// income and a term in months. The canonical feature record works in
// annual income and a term in years; an annual figure supplied here is
// divided by 12 at the evaluation boundary.
type Input struct {
	ApplicantID         string  `json:"applicantId"`
	LoanID              string  `json:"loanId"`
	LoanAmount          float64 `json:"loanAmount"`
	TermMonths          int     `json:"termMonths"`
	MonthlyIncome       float64 `json:"monthlyIncome"`
	AnnualIncome        float64 `json:"annualIncome"`
	ExistingMonthlyDebt float64 `json:"existingMonthlyDebt"`
	EmploymentStatus    string  `json:"employmentStatus"`
	OtherIncome         float64 `json:"otherIncome"`
	Email               string  `json:"email,omitempty"`
	Phone               string  `json:"phone,omitempty"`
}

type Output struct {
	EvaluationID     string   `json:"evaluationId"`
	Decision         string   `json:"decision"`
	Score            int      `json:"score"`
	Reasons          []string `json:"reasons"`
	EstimatedPayment float64  `json:"estimatedPayment"`
	DebtRatio        float64  `json:"debtRatio"`
	LoanStatus       string   `json:"loanStatus"`
	EvaluatedAt      string   `json:"evaluatedAt"` // ISO 8601
}
