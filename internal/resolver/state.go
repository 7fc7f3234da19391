package resolver

import "fmt"

// State is the position of a Resolver in its resolution state machine.
type State int32

const (
	StateIdle State = iota
	StateClassifying
	StatePostalLookup
	StateCoordinateLookup
	StateGeocoderCascade
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateClassifying:
		return "Classifying"
	case StatePostalLookup:
		return "PostalLookup"
	case StateCoordinateLookup:
		return "CoordinateLookup"
	case StateGeocoderCascade:
		return "GeocoderCascade"
	case StateResolved:
		return "Resolved"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
