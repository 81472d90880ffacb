// internal/workers/applicant/persist-profile-bundle/models.go
package persistprofilebundle

import "loan-workers/internal/models"

type Input struct {
	ApplicantID      string                  `json:"applicantId"`
	LoanID           string                  `json:"loanId"`
	ApplicantProfile models.ApplicantProfile `json:"applicantProfile"`
	Inference        map[string]interface{}  `json:"inference"`
	Recommendation   map[string]interface{}  `json:"recommendation"`
}

type Output struct {
	BundleID  string `json:"bundleId,omitempty"`
	Persisted bool   `json:"persisted"`
	CreatedAt string `json:"createdAt,omitempty"` // ISO 8601
}
