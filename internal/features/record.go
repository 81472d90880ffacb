// internal/features/record.go
package features

// Canonical applicant field names. These match the column names the risk
// model was trained on, so they are load-bearing: do not rename.
const (
	FieldDependents        = "no_of_dependents"
	FieldEducation         = "education"
	FieldSelfEmployed      = "self_employed"
	FieldIncomeAnnum       = "income_annum"
	FieldLoanAmount        = "loan_amount"
	FieldLoanTerm          = "loan_term"
	FieldCibilScore        = "cibil_score"
	FieldResidentialAssets = "residential_assets_value"
	FieldCommercialAssets  = "commercial_assets_value"
	FieldLuxuryAssets      = "luxury_assets_value"
	FieldBankAssets        = "bank_asset_value"
)

const (
	EducationGraduate    = "Graduate"
	EducationNotGraduate = "Not Graduate"
	EducationUnknown     = "Unknown"
)

// Features is the canonical applicant feature record. LoanTerm is in
// years; callers holding months convert before building the record.
type Features struct {
	Dependents        int     `json:"no_of_dependents"`
	Education         string  `json:"education"`
	SelfEmployed      bool    `json:"self_employed"`
	IncomeAnnum       float64 `json:"income_annum"`
	LoanAmount        float64 `json:"loan_amount"`
	LoanTerm          int     `json:"loan_term"`
	CibilScore        int     `json:"cibil_score"`
	ResidentialAssets float64 `json:"residential_assets_value"`
	CommercialAssets  float64 `json:"commercial_assets_value"`
	LuxuryAssets      float64 `json:"luxury_assets_value"`
	BankAssets        float64 `json:"bank_asset_value"`
}

// Defaults applied when a field is absent or cannot be coerced.
func defaultFeatures() Features {
	return Features{
		Dependents:        0,
		Education:         EducationNotGraduate,
		SelfEmployed:      false,
		IncomeAnnum:       0,
		LoanAmount:        0,
		LoanTerm:          2,
		CibilScore:        300,
		ResidentialAssets: 0,
		CommercialAssets:  0,
		LuxuryAssets:      0,
		BankAssets:        0,
	}
}

// BuildRecord constructs a Features record from loosely typed input.
// Construction is total: malformed values fall back to defaults and
// never produce an error.
func BuildRecord(fields map[string]interface{}) Features {
	f := defaultFeatures()
	if fields == nil {
		return f
	}

	if v, ok := intField(fields, FieldDependents); ok {
		f.Dependents = v
	}
	if raw, ok := fields[FieldEducation]; ok {
		if s := FromJSON(raw).String(); s != "" {
			f.Education = s
		}
	}
	if raw, ok := fields[FieldSelfEmployed]; ok {
		f.SelfEmployed = FromJSON(raw).Bool()
	}
	if v, ok := floatField(fields, FieldIncomeAnnum); ok {
		f.IncomeAnnum = v
	}
	if v, ok := floatField(fields, FieldLoanAmount); ok {
		f.LoanAmount = v
	}
	if v, ok := intField(fields, FieldLoanTerm); ok {
		f.LoanTerm = v
	}
	if v, ok := intField(fields, FieldCibilScore); ok {
		f.CibilScore = v
	}
	if v, ok := floatField(fields, FieldResidentialAssets); ok {
		f.ResidentialAssets = v
	}
	if v, ok := floatField(fields, FieldCommercialAssets); ok {
		f.CommercialAssets = v
	}
	if v, ok := floatField(fields, FieldLuxuryAssets); ok {
		f.LuxuryAssets = v
	}
	if v, ok := floatField(fields, FieldBankAssets); ok {
		f.BankAssets = v
	}

	return f
}

func intField(fields map[string]interface{}, name string) (int, bool) {
	raw, ok := fields[name]
	if !ok {
		return 0, false
	}
	return FromJSON(raw).Int()
}

func floatField(fields map[string]interface{}, name string) (float64, bool) {
	raw, ok := fields[name]
	if !ok {
		return 0, false
	}
	return FromJSON(raw).Float()
}

// Validate bounds-checks the record and reports issues without
// rejecting it. The caller decides what to do with them.
func (f Features) Validate() []Issue {
	var issues []Issue

	if f.Dependents < 0 || f.Dependents > 20 {
		issues = append(issues, Issue{
			Code:     "dependents_out_of_range",
			Field:    FieldDependents,
			Severity: SeveritySoft,
			Detail:   "expected 0..20",
		})
	}
	if f.IncomeAnnum < 0 {
		issues = append(issues, Issue{
			Code:     "income_negative",
			Field:    FieldIncomeAnnum,
			Severity: SeveritySoft,
			Detail:   "annual income cannot be negative",
		})
	}
	if f.LoanAmount < 0 {
		issues = append(issues, Issue{
			Code:     "loan_amount_negative",
			Field:    FieldLoanAmount,
			Severity: SeveritySoft,
			Detail:   "requested amount cannot be negative",
		})
	}
	if f.LoanTerm < 1 || f.LoanTerm > 40 {
		issues = append(issues, Issue{
			Code:     "loan_term_out_of_bounds",
			Field:    FieldLoanTerm,
			Severity: SeveritySoft,
			Detail:   "expected 1..40 years",
		})
	}
	for _, asset := range []struct {
		name  string
		value float64
	}{
		{FieldResidentialAssets, f.ResidentialAssets},
		{FieldCommercialAssets, f.CommercialAssets},
		{FieldLuxuryAssets, f.LuxuryAssets},
		{FieldBankAssets, f.BankAssets},
	} {
		if asset.value < 0 {
			issues = append(issues, Issue{
				Code:     "asset_value_negative",
				Field:    asset.name,
				Severity: SeveritySoft,
				Detail:   "asset value cannot be negative",
			})
		}
	}

	return issues
}
