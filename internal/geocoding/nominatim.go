package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is the public OpenStreetMap Nominatim instance.
const NominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimUserAgent identifies the client as required by the Nominatim usage policy:
// https://operations.osmfoundation.org/policies/nominatim/
const NominatimUserAgent = "Locus-Address-Resolution/1.0 (https://github.com/UnknownOlympus/locus)"

// DefaultSearchLimit is used when a caller asks for zero or fewer candidates.
const DefaultSearchLimit = 5

const nominatimName = "nominatim"

// NominatimProvider implements the Geocoder interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Nominatim API
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Keeps us within the fair use policy
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// NewNominatimProvider creates a new Nominatim geocoder limited to one request per second.
// An empty baseURL selects the public endpoint.
func NewNominatimProvider(baseURL string, timeout time.Duration, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout},
		baseURL,
		rate.NewLimiter(rate.Every(time.Second), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(
	client HTTPClient,
	baseURL string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimProvider {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return &NominatimProvider{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log,
		limiter:   limiter,
		userAgent: NominatimUserAgent,
	}
}

func (np *NominatimProvider) Name() string {
	return nominatimName
}

// Search runs a single free-text query restricted to Brazil and returns up to limit
// candidates in the order Nominatim ranked them. Results whose coordinates do not parse
// are dropped rather than returned half-filled.
func (np *NominatimProvider) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit exceeded: %w", models.ErrProviderUnavailable, err)
	}

	reqURL, err := url.Parse(np.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("countrycodes", "br")
	params.Set("accept-language", "pt-BR,pt")
	reqURL.RawQuery = params.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	status, body, err := getBody(ctx, np.client, reqURL.String(), map[string]string{
		"User-Agent":      np.userAgent,
		"Accept-Language": "pt-BR,pt",
	})
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", status, "body", string(body))
		return nil, unexpectedStatus(nominatimName, status, body)
	}

	np.log.DebugContext(ctx, "Nominatim raw response", "body", string(body))

	if !gjson.ValidBytes(body) {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "body", string(body))
		return nil, fmt.Errorf("%w: failed to decode nominatim response", models.ErrProviderUnavailable)
	}
	results := gjson.ParseBytes(body)
	if !results.IsArray() {
		return nil, fmt.Errorf("%w: failed to decode nominatim response: expected an array", models.ErrProviderUnavailable)
	}

	items := results.Array()
	candidates := make([]models.Candidate, 0, len(items))
	for _, item := range items {
		coords, errParse := models.ParseGeoCoordinate(item.Get("lat").String(), item.Get("lon").String())
		if errParse != nil {
			np.log.DebugContext(ctx, "Skipping Nominatim result with invalid coordinates", "error", errParse)
			continue
		}
		candidates = append(candidates, models.Candidate{
			Label:      item.Get("display_name").String(),
			Coordinate: *coords,
			ID:         item.Get("place_id").String(),
		})
		if len(candidates) == limit {
			break
		}
	}

	np.log.DebugContext(ctx, "Nominatim search finished", "query", query, "candidates", len(candidates))

	return candidates, nil
}
