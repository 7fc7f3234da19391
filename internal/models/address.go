package models

import "strings"

// PostalCodeLength is the number of digits of a Brazilian postal code (CEP).
const PostalCodeLength = 8

// NormalizedAddress is a structured, coordinate-free address as returned by a postal registry.
type NormalizedAddress struct {
	Street       string `json:"street,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"` // two-letter code, e.g. SP
	PostalCode   string `json:"postal_code,omitempty"`
}

// IsEmpty reports whether the address lacks both a street and a city.
func (a NormalizedAddress) IsEmpty() bool {
	return strings.TrimSpace(a.Street) == "" && strings.TrimSpace(a.City) == ""
}

// FormattedPostalCode returns the postal code in its usual written form (01310-100).
// Codes that are not exactly eight digits are returned unchanged.
func (a NormalizedAddress) FormattedPostalCode() string {
	if len(a.PostalCode) != PostalCodeLength {
		return a.PostalCode
	}

	return a.PostalCode[:5] + "-" + a.PostalCode[5:]
}
