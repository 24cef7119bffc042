// Package statement models identity-claim statements and validates them
// before they are committed into an on-chain verification request. Validation
// is pure and total: it never panics, never stops at the first problem, and
// returns every violation with a path into the originating request body.
package statement

import (
	"encoding/json"
	"fmt"
)

// AttributeTag identifies an identity attribute kind on a credential.
type AttributeTag uint8

const (
	TagFirstName          AttributeTag = 0
	TagLastName           AttributeTag = 1
	TagSex                AttributeTag = 2
	TagDateOfBirth        AttributeTag = 3
	TagCountryOfResidence AttributeTag = 4
	TagNationality        AttributeTag = 5
	TagDocumentType       AttributeTag = 6
	TagDocumentNumber     AttributeTag = 7
	TagDocumentIssuer     AttributeTag = 8
	TagDocumentIssuedAt   AttributeTag = 9
	TagDocumentExpiresAt  AttributeTag = 10
	TagNationalID         AttributeTag = 11
	TagTaxID              AttributeTag = 12
	TagLegalCountry       AttributeTag = 13
)

// Kind discriminates the statement variants.
type Kind string

const (
	KindRevealAttribute   Kind = "RevealAttribute"
	KindAttributeInRange  Kind = "AttributeInRange"
	KindAttributeInSet    Kind = "AttributeInSet"
	KindAttributeNotInSet Kind = "AttributeNotInSet"
)

// Statement is one tagged statement about an identity attribute. Lower,
// Upper, and Set keep the decoded JSON values as-is; the validator, not the
// decoder, decides whether they are acceptable, so a request with a numeric
// lower bound still decodes and gets a path-addressed error back.
type Statement struct {
	Kind  Kind         `json:"type"`
	Tag   AttributeTag `json:"attributeTag"`
	Lower any          `json:"lower,omitempty"`
	Upper any          `json:"upper,omitempty"`
	Set   []any        `json:"set,omitempty"`
}

// UnmarshalJSON rejects unknown statement kinds at decode time; everything
// else is left for the validator.
func (s *Statement) UnmarshalJSON(data []byte) error {
	type alias Statement
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	switch decoded.Kind {
	case KindRevealAttribute, KindAttributeInRange, KindAttributeInSet, KindAttributeNotInSet:
	default:
		return fmt.Errorf("unknown statement type %q", decoded.Kind)
	}
	*s = Statement(decoded)
	return nil
}

// SubjectClaim groups the statements requested against one credential.
type SubjectClaim struct {
	CredentialID string      `json:"credentialId"`
	Statements   []Statement `json:"statements"`
}
