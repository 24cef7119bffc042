package statement

import (
	"fmt"
	"time"

	dErrors "anchorid/pkg/domain-errors"
)

// Allow-lists restricting which statement kinds apply to which tags.
var (
	rangeTags = map[AttributeTag]struct{}{
		TagDateOfBirth:       {},
		TagDocumentIssuedAt:  {},
		TagDocumentExpiresAt: {},
	}
	countrySetTags = map[AttributeTag]struct{}{
		TagCountryOfResidence: {},
		TagNationality:        {},
		TagLegalCountry:       {},
	}
)

// Validate checks every statement of every claim and returns the accumulated
// violations in evaluation order. An empty result means the claims are
// structurally sound. Validate never stops early: a broken statement does not
// shadow problems in the ones after it.
func Validate(claims []SubjectClaim) []dErrors.Detail {
	var details []dErrors.Detail
	add := func(code, path, message string) {
		details = append(details, dErrors.Detail{Code: code, Path: path, Message: message})
	}

	for i, claim := range claims {
		for j, st := range claim.Statements {
			path := fmt.Sprintf("requestedClaims[%d].statements[%d]", i, j)
			switch st.Kind {
			case KindRevealAttribute:
				// Always valid.
			case KindAttributeInRange:
				validateRange(st, path, add)
			case KindAttributeInSet, KindAttributeNotInSet:
				validateSet(st, path, add)
			}
		}
	}
	return details
}

func validateRange(st Statement, path string, add func(code, path, message string)) {
	lower, lowerNumeric := asNonNegativeInteger(st.Lower)
	if !lowerNumeric {
		add(CodeRangeNotNumeric, path+".lower",
			fmt.Sprintf("Provided value `%s` is not a non-negative integer.", render(st.Lower)))
	}
	upper, upperNumeric := asNonNegativeInteger(st.Upper)
	if !upperNumeric {
		add(CodeRangeNotNumeric, path+".upper",
			fmt.Sprintf("Provided value `%s` is not a non-negative integer.", render(st.Upper)))
	}

	// Bound comparison requires both bounds; values are rendered as given.
	if lowerNumeric && upperNumeric && compareDigits(upper, lower) < 0 {
		add(CodeRangeBoundsInvalid, path,
			fmt.Sprintf("Provided `upper bound: %s` must be greater than `lower bound: %s`.", upper, lower))
	}

	if _, ok := rangeTags[st.Tag]; !ok {
		add(CodeRangeInvalidTag, path,
			fmt.Sprintf("Attribute tag %d does not support range statements.", st.Tag))
		return
	}

	// Date-shaped tags additionally require both bounds to be YYYYMMDD
	// calendar dates, checked independently. Bounds that already failed the
	// numeric parse are not re-reported here.
	if lowerNumeric && !isCalendarDate(lower) {
		add(CodeInvalidDateFormat, path+".lower",
			fmt.Sprintf("Provided value `%s` is not a valid YYYYMMDD date.", lower))
	}
	if upperNumeric && !isCalendarDate(upper) {
		add(CodeInvalidDateFormat, path+".upper",
			fmt.Sprintf("Provided value `%s` is not a valid YYYYMMDD date.", upper))
	}
}

func validateSet(st Statement, path string, add func(code, path, message string)) {
	if len(st.Set) == 0 {
		add(CodeSetEmpty, path, "Statement set cannot be empty.")
		return
	}

	if _, ok := countrySetTags[st.Tag]; ok {
		forEachString(st.Set, path, add, func(value, elemPath string) {
			if !isCountryCode(value) {
				add(CodeCountryInvalid, elemPath,
					fmt.Sprintf("Provided value `%s` is not an ISO 3166-1 alpha-2 country code.", value))
			}
		})
		return
	}

	switch st.Tag {
	case TagDocumentIssuer:
		forEachString(st.Set, path, add, func(value, elemPath string) {
			switch {
			case isCountryCode(value):
			case isSubdivisionCode(value):
			case hasHyphen(value):
				add(CodeIssuerInvalid, elemPath,
					fmt.Sprintf("Provided value `%s` is not an ISO 3166-2 subdivision code.", value))
			default:
				add(CodeCountryInvalid, elemPath,
					fmt.Sprintf("Provided value `%s` is not an ISO 3166-1 alpha-2 country code.", value))
			}
		})
	case TagDocumentType:
		forEachString(st.Set, path, add, func(value, elemPath string) {
			if len(value) != 1 || value[0] < '0' || value[0] > '4' {
				add(CodeDocTypeInvalid, elemPath,
					fmt.Sprintf("Provided value `%s` is not a supported identity document type.", value))
			}
		})
	default:
		// One error for the whole statement; elements are not checked
		// individually for a tag that cannot carry set statements at all.
		add(CodeUnsupportedTag, path,
			fmt.Sprintf("Attribute tag %d does not support set statements.", st.Tag))
	}
}

// forEachString applies check to every string element, reporting non-string
// elements and continuing with the rest.
func forEachString(set []any, path string, add func(code, path, message string), check func(value, elemPath string)) {
	for k, raw := range set {
		elemPath := fmt.Sprintf("%s.set[%d]", path, k)
		value, ok := raw.(string)
		if !ok {
			add(CodeAttributeNotString, elemPath,
				fmt.Sprintf("Provided value `%s` is not a string.", render(raw)))
			continue
		}
		check(value, elemPath)
	}
}

// asNonNegativeInteger accepts only string values consisting of one or more
// ASCII digits.
func asNonNegativeInteger(value any) (string, bool) {
	s, ok := value.(string)
	if !ok || len(s) == 0 {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}
	return s, true
}

// compareDigits compares two digit strings numerically without an integer
// width limit. Returns <0, 0, >0 as a is less than, equal to, greater than b.
func compareDigits(a, b string) int {
	a, b = trimLeadingZeros(a), trimLeadingZeros(b)
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

// isCalendarDate requires exactly 8 digits forming a real YYYYMMDD date.
func isCalendarDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse("20060102", s)
	return err == nil
}

func hasHyphen(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			return true
		}
	}
	return false
}

func render(value any) string {
	return fmt.Sprintf("%v", value)
}
