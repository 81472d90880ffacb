// internal/features/vector.go
package features

// FeatureOrder is the exact column order the risk model was trained
// on. The vector encoding depends on this order staying fixed.
var FeatureOrder = []string{
	FieldDependents,
	FieldEducation,
	FieldSelfEmployed,
	FieldIncomeAnnum,
	FieldLoanAmount,
	FieldLoanTerm,
	FieldCibilScore,
	FieldResidentialAssets,
	FieldCommercialAssets,
	FieldLuxuryAssets,
	FieldBankAssets,
}

// Vector encodes the record as a fixed-length numeric slice in
// FeatureOrder. Education encodes Graduate as 1.0 and everything else
// (including Unknown) as 0.0; self_employed encodes true as 1.0.
func (f Features) Vector() []float64 {
	education := 0.0
	if f.Education == EducationGraduate {
		education = 1.0
	}
	selfEmployed := 0.0
	if f.SelfEmployed {
		selfEmployed = 1.0
	}

	return []float64{
		float64(f.Dependents),
		education,
		selfEmployed,
		f.IncomeAnnum,
		f.LoanAmount,
		float64(f.LoanTerm),
		float64(f.CibilScore),
		f.ResidentialAssets,
		f.CommercialAssets,
		f.LuxuryAssets,
		f.BankAssets,
	}
}

// OrderedMap returns the record as a name-to-value map for transport
// to the scoring service.
func (f Features) OrderedMap() map[string]interface{} {
	return map[string]interface{}{
		FieldDependents:        f.Dependents,
		FieldEducation:         f.Education,
		FieldSelfEmployed:      f.SelfEmployed,
		FieldIncomeAnnum:       f.IncomeAnnum,
		FieldLoanAmount:        f.LoanAmount,
		FieldLoanTerm:          f.LoanTerm,
		FieldCibilScore:        f.CibilScore,
		FieldResidentialAssets: f.ResidentialAssets,
		FieldCommercialAssets:  f.CommercialAssets,
		FieldLuxuryAssets:      f.LuxuryAssets,
		FieldBankAssets:        f.BankAssets,
	}
}
