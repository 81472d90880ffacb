// internal/models/profile.go
package models

import "loan-workers/internal/features"

// ApplicantProfile is the assembled feature bundle that flows between
// the profile, scoring and evaluation workers.
type ApplicantProfile struct {
	ApplicantID    string                 `json:"applicantId"`
	LoanID         string                 `json:"loanId,omitempty"`
	Features       features.Features      `json:"features"`
	Quality        float64                `json:"quality"`
	Consistency    []features.Issue       `json:"consistency,omitempty"`
	Provenance     map[string]string      `json:"provenance,omitempty"`
	ExtraExtracted map[string]interface{} `json:"extraExtracted,omitempty"`
	Vector         []float64              `json:"vector"`
	VectorOrder    []string               `json:"vectorOrder"`
	Timestamp      string                 `json:"timestamp"`
}
