package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/locus/internal/models"
	"googlemaps.github.io/maps"
)

const googleName = "google"

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It implements Geocoder.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider wraps an initialized Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

func (gp *GoogleProvider) Name() string {
	return googleName
}

// Search geocodes the query restricted to Brazil and returns up to limit candidates.
// ZERO_RESULTS is reported by the client as an empty slice, which is passed through as is.
func (gp *GoogleProvider) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "query", query)

	req := maps.GeocodingRequest{
		Address:    query,
		Components: map[maps.Component]string{maps.ComponentCountry: "BR"},
		Region:     "br",
		Language:   "pt-BR",
	}
	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to geocode address: %w", models.ErrProviderUnavailable, err)
	}

	candidates := make([]models.Candidate, 0, len(results))
	for _, result := range results {
		location := result.Geometry.Location
		coords, errCoords := models.NewGeoCoordinate(location.Lat, location.Lng)
		if errCoords != nil {
			gp.log.DebugContext(ctx, "Skipping Google result with invalid coordinates", "error", errCoords)
			continue
		}
		candidates = append(candidates, models.Candidate{
			Label:      result.FormattedAddress,
			Coordinate: *coords,
			ID:         result.PlaceID,
		})
		if len(candidates) == limit {
			break
		}
	}

	return candidates, nil
}
