// internal/models/applicant.go
package models

// Applicant is the persisted applicant row.
type Applicant struct {
	ID          string `json:"id"`
	ExternalRef string `json:"externalRef,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}
