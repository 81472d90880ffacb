package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_LoanRecordSchema_Valid(t *testing.T) {
	payload := map[string]interface{}{
		"applicantId":  "applicant-001",
		"loanAmount":   1500000.0,
		"termMonths":   48,
		"annualIncome": 480000.0,
	}

	result, err := Validate(payload, LoanRecordSchema)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_LoanRecordSchema_Violations(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		field   string
	}{
		{
			name: "missing applicant",
			payload: map[string]interface{}{
				"loanAmount": 1000.0,
				"termMonths": 12,
			},
			field: "applicantId",
		},
		{
			name: "zero amount",
			payload: map[string]interface{}{
				"applicantId": "applicant-001",
				"loanAmount":  0.0,
				"termMonths":  12,
			},
			field: "loanAmount",
		},
		{
			name: "term too short",
			payload: map[string]interface{}{
				"applicantId": "applicant-001",
				"loanAmount":  1000.0,
				"termMonths":  3,
			},
			field: "termMonths",
		},
		{
			name: "term too long",
			payload: map[string]interface{}{
				"applicantId": "applicant-001",
				"loanAmount":  1000.0,
				"termMonths":  240,
			},
			field: "termMonths",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate(tt.payload, LoanRecordSchema)

			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.True(t, result.HasErrors(tt.field), "expected error on %s, got %v", tt.field, result.GetErrorMessages())
		})
	}
}

func TestValidate_LoanRequestSchema(t *testing.T) {
	payload := map[string]interface{}{
		"applicantId": "applicant-001",
		"submitted": map[string]interface{}{
			"income":   480000.0,
			"loanTerm": 4.0,
		},
		"confidences": map[string]interface{}{"income": 0.9},
	}

	result, err := Validate(payload, LoanRequestSchema)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	// Empty applicantId is rejected even with a submitted block
	payload["applicantId"] = ""
	result, err = Validate(payload, LoanRequestSchema)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidationResult_GetErrorsForField(t *testing.T) {
	result := &ValidationResult{
		Valid: false,
		Errors: []ValidationError{
			{Field: "termMonths", Message: "too small"},
			{Field: "submitted.income", Message: "wrong type"},
		},
	}

	assert.Len(t, result.GetErrorsForField("submitted"), 1)
	assert.Len(t, result.GetErrorsForField("termMonths"), 1)
	assert.Empty(t, result.GetErrorsForField("loanAmount"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("applicant@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+15550001111"))
	assert.False(t, ValidatePhone("123"))
}
