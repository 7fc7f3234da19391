package api_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnknownOlympus/locus/internal/api"
	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/UnknownOlympus/locus/internal/resolver"
	"github.com/UnknownOlympus/locus/test/mocks"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var paulista = &models.NormalizedAddress{
	Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP", PostalCode: "01310100",
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type apiFixture struct {
	postal   *mocks.PostalRegistry
	coords   *mocks.CoordinateRegistry
	geocoder *mocks.Geocoder
	router   *gin.Engine
}

func newAPIFixture(t *testing.T, db api.Pinger) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fx := &apiFixture{
		postal:   mocks.NewPostalRegistry(t),
		coords:   mocks.NewCoordinateRegistry(t),
		geocoder: mocks.NewGeocoder(t),
	}
	fx.postal.On("Name").Return("viacep").Maybe()
	fx.coords.On("Name").Return("brasilapi").Maybe()
	fx.geocoder.On("Name").Return("nominatim").Maybe()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	logger := slog.Default()
	registry := resolver.NewRegistry(func() *resolver.Resolver {
		return resolver.New(logger, fx.postal, fx.coords, fx.geocoder, m, resolver.Options{})
	}, resolver.DefaultSources()...)

	fx.router = api.NewServer(logger, registry, reg, db).Router()

	return fx
}

func (fx *apiFixture) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	fx.router.ServeHTTP(rec, req)

	return rec
}

func TestResolveEndpoint(t *testing.T) {
	t.Run("exact coordinate", func(t *testing.T) {
		fx := newAPIFixture(t, nil)
		fx.postal.On("LookupPostalCode", mock.Anything, "01310100").Return(paulista, nil)
		fx.coords.On("ResolveCoordinate", mock.Anything, "01310100").
			Return(&models.GeoCoordinate{Latitude: -23.5613, Longitude: -46.6565}, nil)

		rec := fx.get("/v1/resolve?q=01310-100&source=address-registration")

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Address    models.NormalizedAddress `json:"address"`
			Coordinate models.GeoCoordinate     `json:"coordinate"`
			Tier       string                   `json:"precision_tier"`
			Source     string                   `json:"source_provider"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "EXACT", body.Tier)
		assert.Equal(t, "brasilapi", body.Source)
		assert.InDelta(t, -23.5613, body.Coordinate.Latitude, 1e-9)
		assert.Equal(t, "Bela Vista", body.Address.Neighborhood)
	})

	t.Run("free text candidates", func(t *testing.T) {
		fx := newAPIFixture(t, nil)
		fx.geocoder.On("Search", mock.Anything, "Rua Augusta", resolver.DefaultSearchLimit).Return([]models.Candidate{
			{Label: "Rua Augusta, Consolação", ID: "1"},
			{Label: "Rua Augusta, Jardins", ID: "2"},
		}, nil)

		rec := fx.get("/v1/resolve?q=Rua+Augusta")

		require.Equal(t, http.StatusOK, rec.Code)
		var body models.ResolutionResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Candidates, 2)
		assert.Equal(t, models.TierStreet, body.Tier)
	})
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		target string
		setup  func(fx *apiFixture)
		status int
		code   string
	}{
		{
			name:   "empty query",
			target: "/v1/resolve?q=",
			status: http.StatusBadRequest,
			code:   "empty_query",
		},
		{
			name:   "unknown source",
			target: "/v1/resolve?q=01310100&source=kiosk",
			status: http.StatusBadRequest,
			code:   "unknown_source",
		},
		{
			name:   "invalid postal code",
			target: "/v1/postal-codes/1234",
			status: http.StatusUnprocessableEntity,
			code:   "invalid_postal_code",
		},
		{
			name:   "unknown postal code",
			target: "/v1/postal-codes/12345678",
			setup: func(fx *apiFixture) {
				fx.postal.On("LookupPostalCode", mock.Anything, "12345678").Return(nil, models.ErrPostalCodeNotFound)
			},
			status: http.StatusNotFound,
			code:   "postal_code_not_found",
		},
		{
			name:   "no search results",
			target: "/v1/search?q=nowhere",
			setup: func(fx *apiFixture) {
				fx.geocoder.On("Search", mock.Anything, "nowhere", resolver.DefaultSearchLimit).
					Return([]models.Candidate{}, nil)
			},
			status: http.StatusNotFound,
			code:   "no_results",
		},
		{
			name:   "registries unavailable",
			target: "/v1/postal-codes/01310100",
			setup: func(fx *apiFixture) {
				fx.postal.On("LookupPostalCode", mock.Anything, "01310100").Return(nil, models.ErrProviderUnavailable)
				fx.coords.On("Lookup", mock.Anything, "01310100").Return(nil, nil, models.ErrProviderUnavailable)
			},
			status: http.StatusServiceUnavailable,
			code:   "provider_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newAPIFixture(t, nil)
			if tt.setup != nil {
				tt.setup(fx)
			}

			rec := fx.get(tt.target)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestConcurrentRequestsOnSameSource(t *testing.T) {
	fx := newAPIFixture(t, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	fx.geocoder.On("Search", mock.Anything, "Rua Augusta", resolver.DefaultSearchLimit).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]models.Candidate{{Label: "Rua Augusta"}}, nil).
		Once()

	done := make(chan int, 1)
	go func() {
		done <- fx.get("/v1/search?q=Rua+Augusta").Code
	}()
	<-started

	rec := fx.get("/v1/search?q=Rua+Oscar+Freire")
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestHealthz(t *testing.T) {
	t.Run("without database", func(t *testing.T) {
		fx := newAPIFixture(t, nil)

		rec := fx.get("/healthz")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		fx := newAPIFixture(t, pingFunc(func(context.Context) error { return assert.AnError }))

		rec := fx.get("/healthz")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	fx := newAPIFixture(t, nil)
	fx.get("/v1/resolve?q=")

	rec := fx.get("/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `locus_resolution_failures_total{reason="empty_query"} 1`)
}
