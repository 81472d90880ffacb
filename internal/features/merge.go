// internal/features/merge.go
package features

// CanonicalFields is the set of field names the feature record knows
// about. Extracted keys outside this set are preserved separately.
var CanonicalFields = map[string]bool{
	FieldDependents:        true,
	FieldEducation:         true,
	FieldSelfEmployed:      true,
	FieldIncomeAnnum:       true,
	FieldLoanAmount:        true,
	FieldLoanTerm:          true,
	FieldCibilScore:        true,
	FieldResidentialAssets: true,
	FieldCommercialAssets:  true,
	FieldLuxuryAssets:      true,
	FieldBankAssets:        true,
}

const (
	SourceSubmitted = "submitted"
	SourceExtracted = "extracted"
)

// Merge combines applicant-submitted fields with document-extracted
// ones. A non-nil submitted value always wins; extracted values only
// fill gaps. The returned provenance maps each merged key to its
// source, and extra holds extracted keys outside the canonical set so
// nothing is silently dropped.
func Merge(submitted, extracted map[string]interface{}) (merged map[string]interface{}, provenance map[string]string, extra map[string]interface{}) {
	merged = make(map[string]interface{})
	provenance = make(map[string]string)
	extra = make(map[string]interface{})

	for k, v := range extracted {
		if !CanonicalFields[k] {
			extra[k] = v
			continue
		}
		merged[k] = v
		provenance[k] = SourceExtracted
	}

	for k, v := range submitted {
		if v == nil {
			continue
		}
		merged[k] = v
		provenance[k] = SourceSubmitted
	}

	return merged, provenance, extra
}

// QualityScore is the arithmetic mean of the extraction confidences,
// 0 when there are none.
func QualityScore(confidences map[string]float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}
