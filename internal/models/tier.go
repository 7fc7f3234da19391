package models

import "fmt"

// PrecisionTier is the categorical confidence of a resolved coordinate.
// Lower values are more precise.
type PrecisionTier int

const (
	TierExact        PrecisionTier = iota // provider-returned rooftop/parcel coordinate
	TierStreet                            // geocoder matched at street level
	TierNeighborhood                      // geocoder matched at neighborhood level
	TierCity                              // city-level approximation
	TierNone                              // no coordinate found
)

var tierNames = map[PrecisionTier]string{
	TierExact:        "EXACT",
	TierStreet:       "STREET",
	TierNeighborhood: "NEIGHBORHOOD",
	TierCity:         "CITY",
	TierNone:         "NONE",
}

func (t PrecisionTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}

	return fmt.Sprintf("PrecisionTier(%d)", int(t))
}

// MarshalText renders the tier by name in JSON payloads and log attributes.
func (t PrecisionTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name.
func (t *PrecisionTier) UnmarshalText(text []byte) error {
	for tier, name := range tierNames {
		if name == string(text) {
			*t = tier
			return nil
		}
	}

	return fmt.Errorf("unknown precision tier: %q", string(text))
}

// MoreOrEquallyPrecise reports whether t is at least as precise as other.
func (t PrecisionTier) MoreOrEquallyPrecise(other PrecisionTier) bool {
	return t <= other
}
