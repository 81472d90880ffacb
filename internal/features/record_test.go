// internal/features/record_test.go
package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRecord_Defaults(t *testing.T) {
	f := BuildRecord(nil)

	assert.Equal(t, 0, f.Dependents)
	assert.Equal(t, EducationNotGraduate, f.Education)
	assert.False(t, f.SelfEmployed)
	assert.Equal(t, float64(0), f.IncomeAnnum)
	assert.Equal(t, float64(0), f.LoanAmount)
	assert.Equal(t, 2, f.LoanTerm)
	assert.Equal(t, 300, f.CibilScore)
	assert.Equal(t, float64(0), f.ResidentialAssets)
	assert.Equal(t, float64(0), f.CommercialAssets)
	assert.Equal(t, float64(0), f.LuxuryAssets)
	assert.Equal(t, float64(0), f.BankAssets)
}

func TestBuildRecord(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]interface{}
		validate func(t *testing.T, f Features)
	}{
		{
			name: "fully populated record",
			fields: map[string]interface{}{
				FieldDependents:        float64(2),
				FieldEducation:         EducationGraduate,
				FieldSelfEmployed:      "Yes",
				FieldIncomeAnnum:       float64(9600000),
				FieldLoanAmount:        float64(29900000),
				FieldLoanTerm:          float64(12),
				FieldCibilScore:        float64(778),
				FieldResidentialAssets: float64(2400000),
				FieldCommercialAssets:  float64(17600000),
				FieldLuxuryAssets:      float64(22700000),
				FieldBankAssets:        float64(8000000),
			},
			validate: func(t *testing.T, f Features) {
				assert.Equal(t, 2, f.Dependents)
				assert.Equal(t, EducationGraduate, f.Education)
				assert.True(t, f.SelfEmployed)
				assert.Equal(t, float64(9600000), f.IncomeAnnum)
				assert.Equal(t, 12, f.LoanTerm)
				assert.Equal(t, 778, f.CibilScore)
			},
		},
		{
			name: "malformed values fall back to defaults",
			fields: map[string]interface{}{
				FieldDependents: "a few",
				FieldCibilScore: "excellent",
				FieldLoanTerm:   "soon",
				FieldLoanAmount: "lots",
			},
			validate: func(t *testing.T, f Features) {
				assert.Equal(t, 0, f.Dependents)
				assert.Equal(t, 300, f.CibilScore)
				assert.Equal(t, 2, f.LoanTerm)
				assert.Equal(t, float64(0), f.LoanAmount)
			},
		},
		{
			name: "numeric strings are coerced",
			fields: map[string]interface{}{
				FieldIncomeAnnum: "50,000",
				FieldCibilScore:  "720",
				FieldLoanTerm:    "24.0",
			},
			validate: func(t *testing.T, f Features) {
				assert.Equal(t, float64(50000), f.IncomeAnnum)
				assert.Equal(t, 720, f.CibilScore)
				assert.Equal(t, 24, f.LoanTerm)
			},
		},
		{
			name:   "empty education keeps default",
			fields: map[string]interface{}{FieldEducation: ""},
			validate: func(t *testing.T, f Features) {
				assert.Equal(t, EducationNotGraduate, f.Education)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, BuildRecord(tt.fields))
		})
	}
}

func TestFeatures_Validate(t *testing.T) {
	t.Run("clean record has no issues", func(t *testing.T) {
		f := defaultFeatures()
		f.IncomeAnnum = 60000
		assert.Empty(t, f.Validate())
	})

	t.Run("out of bounds fields are reported", func(t *testing.T) {
		f := Features{
			Dependents:       25,
			Education:        EducationGraduate,
			IncomeAnnum:      -1,
			LoanAmount:       -500,
			LoanTerm:         0,
			CibilScore:       700,
			CommercialAssets: -10,
		}

		issues := f.Validate()
		codes := make([]string, 0, len(issues))
		for _, issue := range issues {
			codes = append(codes, issue.Code)
		}

		assert.Contains(t, codes, "dependents_out_of_range")
		assert.Contains(t, codes, "income_negative")
		assert.Contains(t, codes, "loan_amount_negative")
		assert.Contains(t, codes, "loan_term_out_of_bounds")
		assert.Contains(t, codes, "asset_value_negative")
	})
}

func BenchmarkBuildRecord(b *testing.B) {
	fields := map[string]interface{}{
		FieldDependents:   "2",
		FieldEducation:    "grad",
		FieldSelfEmployed: "yes",
		FieldIncomeAnnum:  float64(9600000),
		FieldLoanAmount:   "29,900,000",
		FieldLoanTerm:     "12",
		FieldCibilScore:   float64(778),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildRecord(fields)
	}
}
