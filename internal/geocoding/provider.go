package geocoding

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/UnknownOlympus/locus/internal/models"
)

// PostalRegistry resolves a postal code to a structured, coordinate-free address.
// A nil address with a nil error is treated as an unknown postal code.
type PostalRegistry interface {
	Name() string
	LookupPostalCode(ctx context.Context, code string) (*models.NormalizedAddress, error)
}

// CoordinateRegistry is a secondary, coordinate-aware registry indexed by postal code.
// ResolveCoordinate only succeeds when the registry embeds a full coordinate pair;
// Lookup also hands back the structured address it knows, with or without a coordinate.
type CoordinateRegistry interface {
	Name() string
	ResolveCoordinate(ctx context.Context, code string) (*models.GeoCoordinate, error)
	Lookup(ctx context.Context, code string) (*models.NormalizedAddress, *models.GeoCoordinate, error)
}

// Geocoder performs free-text searches. An empty slice with a nil error means
// the service answered but found nothing.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]models.Candidate, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// getBody performs a GET request and returns the status code and the raw body.
// Any failure to talk to the provider is wrapped with models.ErrProviderUnavailable.
func getBody(ctx context.Context, client HTTPClient, reqURL string, headers map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to execute request: %w", models.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: failed to read response body: %w", models.ErrProviderUnavailable, err)
	}

	return resp.StatusCode, body, nil
}

// unexpectedStatus builds the error for a non-successful HTTP status.
func unexpectedStatus(provider string, status int, body []byte) error {
	const maxBody = 256
	if len(body) > maxBody {
		body = body[:maxBody]
	}

	return fmt.Errorf("%w: %s API returned status %d: %s", models.ErrProviderUnavailable, provider, status, string(body))
}
