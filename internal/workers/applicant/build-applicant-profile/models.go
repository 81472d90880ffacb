// internal/workers/applicant/build-applicant-profile/models.go
package buildapplicantprofile

import "loan-workers/internal/models"

type Input struct {
	ApplicantID string                 `json:"applicantId"`
	LoanID      string                 `json:"loanId"`
	Submitted   map[string]interface{} `json:"submitted"`
	Extracted   map[string]interface{} `json:"extracted"`
	Confidences map[string]float64     `json:"confidences"`
}

type Output struct {
	ApplicantProfile models.ApplicantProfile `json:"applicantProfile"`
	RequiresReview   bool                    `json:"requiresReview"`
}
