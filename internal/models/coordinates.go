package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate is returned when a latitude/longitude pair is not a usable point on Earth.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// GeoCoordinate represents a geographical point defined by its latitude and longitude.
// A coordinate is either fully known or absent: results carry a *GeoCoordinate and never
// a half-filled value.
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the point in degrees.
	Longitude float64 `json:"longitude"` // Longitude of the point in degrees.
}

// NewGeoCoordinate validates both components and returns the coordinate.
// NaN, infinities and out-of-range values are rejected.
func NewGeoCoordinate(lat, lon float64) (*GeoCoordinate, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return nil, fmt.Errorf("%w: non-finite value (lat=%v, lon=%v)", ErrInvalidCoordinate, lat, lon)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: out of range (lat=%v, lon=%v)", ErrInvalidCoordinate, lat, lon)
	}

	return &GeoCoordinate{Latitude: lat, Longitude: lon}, nil
}

// ParseGeoCoordinate parses a latitude/longitude pair delivered as strings, as most
// Brazilian registries and Nominatim do.
func ParseGeoCoordinate(lat, lon string) (*GeoCoordinate, error) {
	latValue, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %q", ErrInvalidCoordinate, lat)
	}
	lonValue, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %q", ErrInvalidCoordinate, lon)
	}

	return NewGeoCoordinate(latValue, lonValue)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
