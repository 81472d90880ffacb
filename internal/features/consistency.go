// internal/features/consistency.go
package features

const (
	SeverityHard = "hard"
	SeveritySoft = "soft"
)

// Issue is a single consistency finding. Hard issues mark the record
// for manual review; they are recorded but never halt the pipeline.
type Issue struct {
	Code     string `json:"code"`
	Field    string `json:"field"`
	Severity string `json:"severity"`
	Detail   string `json:"detail,omitempty"`
}

// Check runs the cross-field consistency rules over the coerced record
// plus the raw fields it was built from. Rules run in declaration
// order and every finding is returned.
func Check(raw map[string]interface{}, f Features) []Issue {
	var issues []Issue

	if f.CibilScore < 300 || f.CibilScore > 900 {
		issues = append(issues, Issue{
			Code:     "cibil_score_out_of_range",
			Field:    FieldCibilScore,
			Severity: SeverityHard,
			Detail:   "expected 300..900",
		})
	}

	if rawScore, present := raw[FieldCibilScore]; present {
		if _, ok := FromJSON(rawScore).Int(); !ok {
			issues = append(issues, Issue{
				Code:     "cibil_score_unparsable",
				Field:    FieldCibilScore,
				Severity: SeveritySoft,
				Detail:   "value could not be read as a number",
			})
		}
	}

	if f.IncomeAnnum > 0 && f.LoanAmount > 5*f.IncomeAnnum {
		issues = append(issues, Issue{
			Code:     "loan_amount_gt_5x_income",
			Field:    FieldLoanAmount,
			Severity: SeveritySoft,
			Detail:   "requested amount exceeds five times annual income",
		})
	}

	if f.LoanTerm <= 0 || f.LoanTerm > 40 {
		issues = append(issues, Issue{
			Code:     "loan_term_unusual",
			Field:    FieldLoanTerm,
			Severity: SeveritySoft,
			Detail:   "term outside 1..40 years",
		})
	}

	return issues
}

// HasHardStop reports whether any issue carries hard severity.
func HasHardStop(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityHard {
			return true
		}
	}
	return false
}
