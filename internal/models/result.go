package models

// QueryKind tells how raw user input was classified.
type QueryKind int

const (
	QueryFreeText QueryKind = iota
	QueryPostalCode
)

func (k QueryKind) String() string {
	if k == QueryPostalCode {
		return "postal_code"
	}

	return "free_text"
}

// Query is classified user input. For postal codes Value holds the eight digits,
// for free text the trimmed original string.
type Query struct {
	Kind  QueryKind
	Value string
}

// Candidate is a single geocoder match offered to the caller for disambiguation.
type Candidate struct {
	Label      string        `json:"label"`
	Coordinate GeoCoordinate `json:"coordinate"`
	ID         string        `json:"id"`
}

// ResolutionResult is the normalized outcome of one resolution request.
type ResolutionResult struct {
	Address    *NormalizedAddress `json:"address"`
	Coordinate *GeoCoordinate     `json:"coordinate"`
	Tier       PrecisionTier      `json:"precision_tier"`
	Source     string             `json:"source_provider"`
	Warning    string             `json:"warning,omitempty"`
	Candidates []Candidate        `json:"candidates,omitempty"`
}
