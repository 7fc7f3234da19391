package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/locus/internal/classifier"
	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/tidwall/gjson"
)

// BrasilAPIBaseURL is the CEP v2 endpoint of BrasilAPI, which embeds coordinates when known.
const BrasilAPIBaseURL = "https://brasilapi.com.br/api/cep/v2"

const brasilAPIName = "brasilapi"

// BrasilAPIRegistry implements CoordinateRegistry on top of BrasilAPI.
type BrasilAPIRegistry struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
}

type brasilAPIResponse struct {
	CEP          string `json:"cep"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
}

// NewBrasilAPIRegistry creates a BrasilAPI registry with its own HTTP client.
func NewBrasilAPIRegistry(baseURL string, timeout time.Duration, log *slog.Logger) *BrasilAPIRegistry {
	return NewBrasilAPIRegistryWithClient(&http.Client{Timeout: timeout}, baseURL, log)
}

// NewBrasilAPIRegistryWithClient creates a BrasilAPI registry with a custom HTTP client.
func NewBrasilAPIRegistryWithClient(client HTTPClient, baseURL string, log *slog.Logger) *BrasilAPIRegistry {
	if baseURL == "" {
		baseURL = BrasilAPIBaseURL
	}

	return &BrasilAPIRegistry{client: client, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

func (br *BrasilAPIRegistry) Name() string {
	return brasilAPIName
}

// ResolveCoordinate returns the coordinate BrasilAPI holds for the postal code.
// A structured-address-only answer is models.ErrNoCoordinateAvailable.
func (br *BrasilAPIRegistry) ResolveCoordinate(ctx context.Context, code string) (*models.GeoCoordinate, error) {
	_, coords, err := br.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrNoCoordinateAvailable, err)
	}
	if coords == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrNoCoordinateAvailable, code)
	}

	return coords, nil
}

// Lookup returns the address BrasilAPI knows for the postal code together with its
// coordinate, which is nil when the response has no usable location.
func (br *BrasilAPIRegistry) Lookup(
	ctx context.Context,
	code string,
) (*models.NormalizedAddress, *models.GeoCoordinate, error) {
	if !classifier.IsPostalCode(code) {
		return nil, nil, fmt.Errorf("%w: %q", models.ErrInvalidPostalCodeFormat, code)
	}

	reqURL, err := url.JoinPath(br.baseURL, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build BrasilAPI URL: %w", err)
	}

	br.log.DebugContext(ctx, "BrasilAPI request", "url", reqURL)

	status, body, err := getBody(ctx, br.client, reqURL, nil)
	if err != nil {
		return nil, nil, err
	}

	switch status {
	case http.StatusOK:
		// continue
	case http.StatusNotFound:
		return nil, nil, fmt.Errorf("%w: %s", models.ErrPostalCodeNotFound, code)
	case http.StatusBadRequest:
		return nil, nil, fmt.Errorf("%w: rejected by BrasilAPI: %s", models.ErrInvalidPostalCodeFormat, code)
	default:
		br.log.ErrorContext(ctx, "BrasilAPI error", "status", status, "body", string(body))
		return nil, nil, unexpectedStatus(brasilAPIName, status, body)
	}

	var resp brasilAPIResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to decode BrasilAPI response: %w", models.ErrProviderUnavailable, err)
	}

	address := &models.NormalizedAddress{
		Street:       strings.TrimSpace(resp.Street),
		Neighborhood: strings.TrimSpace(resp.Neighborhood),
		City:         strings.TrimSpace(resp.City),
		State:        strings.ToUpper(strings.TrimSpace(resp.State)),
		PostalCode:   code,
	}
	if address.IsEmpty() {
		address = nil
	}

	return address, br.parseCoordinates(ctx, code, body), nil
}

// parseCoordinates extracts location.coordinates; values arrive as strings but numbers are
// accepted too. Anything short of two finite numbers yields nil.
func (br *BrasilAPIRegistry) parseCoordinates(ctx context.Context, code string, body []byte) *models.GeoCoordinate {
	lat := gjson.GetBytes(body, "location.coordinates.latitude")
	lon := gjson.GetBytes(body, "location.coordinates.longitude")
	if !lat.Exists() || !lon.Exists() {
		br.log.DebugContext(ctx, "BrasilAPI response has no coordinates", "cep", code)
		return nil
	}

	coords, err := models.ParseGeoCoordinate(lat.String(), lon.String())
	if err != nil {
		br.log.WarnContext(ctx, "BrasilAPI returned unusable coordinates", "cep", code, "error", err)
		return nil
	}

	br.log.DebugContext(ctx, "BrasilAPI found coordinates", "cep", code, "lat", coords.Latitude, "lon", coords.Longitude)

	return coords
}
