package geocoding

import (
	"context"
	"encoding/json"
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

// ViaCEPBaseURL is the public ViaCEP web service root.
const ViaCEPBaseURL = "https://viacep.com.br/ws"

const viaCEPName = "viacep"

// ViaCEPRegistry implements PostalRegistry on top of the ViaCEP web service.
type ViaCEPRegistry struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the ViaCEP API
	log     *slog.Logger // Logger for logging operations
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
}

// NewViaCEPRegistry creates a ViaCEP registry with its own HTTP client.
// An empty baseURL selects the public endpoint.
func NewViaCEPRegistry(baseURL string, timeout time.Duration, log *slog.Logger) *ViaCEPRegistry {
	return NewViaCEPRegistryWithClient(&http.Client{Timeout: timeout}, baseURL, log)
}

// NewViaCEPRegistryWithClient creates a ViaCEP registry with a custom HTTP client.
func NewViaCEPRegistryWithClient(client HTTPClient, baseURL string, log *slog.Logger) *ViaCEPRegistry {
	if baseURL == "" {
		baseURL = ViaCEPBaseURL
	}

	return &ViaCEPRegistry{client: client, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

func (vr *ViaCEPRegistry) Name() string {
	return viaCEPName
}

// LookupPostalCode fetches the address registered for an eight-digit postal code.
// ViaCEP answers unknown codes with HTTP 200 and an "erro" flag, which is reported as
// models.ErrPostalCodeNotFound; transport problems are models.ErrProviderUnavailable.
func (vr *ViaCEPRegistry) LookupPostalCode(ctx context.Context, code string) (*models.NormalizedAddress, error) {
	if !classifier.IsPostalCode(code) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidPostalCodeFormat, code)
	}

	reqURL, err := url.JoinPath(vr.baseURL, code, "json")
	if err != nil {
		return nil, fmt.Errorf("failed to build ViaCEP URL: %w", err)
	}
	reqURL += "/"

	vr.log.DebugContext(ctx, "ViaCEP request", "url", reqURL)

	status, body, err := getBody(ctx, vr.client, reqURL, nil)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		// continue
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: rejected by ViaCEP: %s", models.ErrInvalidPostalCodeFormat, code)
	default:
		vr.log.ErrorContext(ctx, "ViaCEP API error", "status", status, "body", string(body))
		return nil, unexpectedStatus(viaCEPName, status, body)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: failed to decode ViaCEP response", models.ErrProviderUnavailable)
	}

	// "erro" arrives either as a boolean or as the string "true".
	if gjson.GetBytes(body, "erro").Bool() {
		vr.log.DebugContext(ctx, "ViaCEP reports unknown postal code", "cep", code)
		return nil, fmt.Errorf("%w: %s", models.ErrPostalCodeNotFound, code)
	}

	var resp viaCEPResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode ViaCEP response: %w", models.ErrProviderUnavailable, err)
	}

	address := &models.NormalizedAddress{
		Street:       strings.TrimSpace(resp.Logradouro),
		Neighborhood: strings.TrimSpace(resp.Bairro),
		City:         strings.TrimSpace(resp.Localidade),
		State:        strings.ToUpper(strings.TrimSpace(resp.UF)),
		PostalCode:   code,
	}
	if address.IsEmpty() {
		return nil, fmt.Errorf("%w: %s (empty address)", models.ErrPostalCodeNotFound, code)
	}

	vr.log.DebugContext(ctx, "ViaCEP found address", "cep", code, "city", address.City, "state", address.State)

	return address, nil
}
