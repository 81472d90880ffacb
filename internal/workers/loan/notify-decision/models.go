// internal/workers/loan/notify-decision/models.go
package notifydecision

type Input struct {
	ApplicantID string                 `json:"applicantId"`
	LoanID      string                 `json:"loanId"`
	Decision    string                 `json:"decision"` // "pass", "fail", "review"
	Score       int                    `json:"score"`
	Reasons     []string               `json:"reasons,omitempty"`
	LoanAmount  float64                `json:"loanAmount,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
