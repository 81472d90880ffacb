// internal/workers/loan/index-evaluation/models.go
package indexevaluation

type Input struct {
	EvaluationID     string   `json:"evaluationId"`
	ApplicantID      string   `json:"applicantId"`
	LoanID           string   `json:"loanId"`
	Decision         string   `json:"decision"`
	Score            int      `json:"score"`
	Reasons          []string `json:"reasons,omitempty"`
	EstimatedPayment float64  `json:"estimatedPayment"`
	DebtRatio        float64  `json:"debtRatio"`
	EvaluatedAt      string   `json:"evaluatedAt"`
}

type Output struct {
	Indexed   bool   `json:"indexed"`
	Index     string `json:"index,omitempty"`
	IndexedAt string `json:"indexedAt"` // ISO 8601
}
