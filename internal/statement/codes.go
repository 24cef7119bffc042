package statement

// Validation detail codes. These are part of the API contract: clients match
// on them to highlight the offending field.
const (
	CodeRangeNotNumeric    = "ATTRIBUTE_IN_RANGE_STATEMENT_NOT_NUMERIC"
	CodeRangeBoundsInvalid = "ATTRIBUTE_IN_RANGE_STATEMENT_BOUNDS_INVALID"
	CodeRangeInvalidTag    = "ATTRIBUTE_IN_RANGE_STATEMENT_INVALID_ATTRIBUTE_TAG"
	CodeInvalidDateFormat  = "INVALID_DATE_FORMAT"
	CodeSetEmpty           = "INVALID_SET_CANNOT_BE_EMPTY"
	CodeAttributeNotString = "ATTRIBUTE_NOT_STRING"
	CodeCountryInvalid     = "COUNTRY_CODE_INVALID"
	CodeIssuerInvalid      = "INVALID_ISSUER_CODE"
	CodeDocTypeInvalid     = "INVALID_ID_DOC_TYPE"
	CodeUnsupportedTag     = "UNSUPPORTED_ATTRIBUTE_TAG"
)
