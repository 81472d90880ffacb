// internal/features/normalize.go
package features

import "strings"

var educationSynonyms = map[string]string{
	"grad":         EducationGraduate,
	"graduate":     EducationGraduate,
	"g":            EducationGraduate,
	"not graduate": EducationNotGraduate,
	"not_graduate": EducationNotGraduate,
	"non graduate": EducationNotGraduate,
	"non-graduate": EducationNotGraduate,
	"nongraduate":  EducationNotGraduate,
	"ng":           EducationNotGraduate,
}

// Normalize canonicalizes the fields the downstream models are picky
// about and passes everything else through untouched. The input map is
// never mutated.
func Normalize(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}

	if raw, ok := out[FieldEducation]; ok {
		out[FieldEducation] = NormalizeEducation(FromJSON(raw).String())
	}

	if raw, ok := out[FieldSelfEmployed]; ok {
		if FromJSON(raw).Bool() {
			out[FieldSelfEmployed] = "Yes"
		} else {
			out[FieldSelfEmployed] = "No"
		}
	}

	if raw, ok := out[FieldLoanTerm]; ok {
		if term, coerced := FromJSON(raw).Int(); coerced {
			out[FieldLoanTerm] = term
		}
		// Uncoercible terms stay as-is so the consistency check can flag them.
	}

	return out
}

// NormalizeEducation maps the synonym table onto the two canonical
// labels. Unrecognized values, including empty, become Unknown.
func NormalizeEducation(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := educationSynonyms[key]; ok {
		return canonical
	}
	return EducationUnknown
}
