package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/UnknownOlympus/locus/internal/resolver"
	"github.com/UnknownOlympus/locus/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type backfillFixture struct {
	repo     *mocks.Interface
	postal   *mocks.PostalRegistry
	coords   *mocks.CoordinateRegistry
	geocoder *mocks.Geocoder
	metrics  *metrics.Metrics
	service  *BackfillService
}

func newBackfillFixture(t *testing.T) *backfillFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	fx := &backfillFixture{
		repo:     mocks.NewInterface(t),
		postal:   mocks.NewPostalRegistry(t),
		coords:   mocks.NewCoordinateRegistry(t),
		geocoder: mocks.NewGeocoder(t),
		metrics:  metrics.NewMetrics(prometheus.NewRegistry()),
	}
	fx.postal.On("Name").Return("viacep").Maybe()
	fx.coords.On("Name").Return("brasilapi").Maybe()
	fx.geocoder.On("Name").Return("nominatim").Maybe()

	newResolver := func() *resolver.Resolver {
		return resolver.New(logger, fx.postal, fx.coords, fx.geocoder, fx.metrics, resolver.Options{})
	}
	fx.service = NewBackfillService(logger, fx.repo, newResolver, fx.metrics, 2, time.Second)

	return fx
}

func TestProcessBatch(t *testing.T) {
	ctx := t.Context()
	paulista := &models.NormalizedAddress{
		Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP", PostalCode: "01310100",
	}
	coords := &models.GeoCoordinate{Latitude: -23.5613, Longitude: -46.6565}

	t.Run("successful processing", func(t *testing.T) {
		fx := newBackfillFixture(t)
		fx.repo.On("FetchPendingAddresses", ctx, DefaultBatchSize).
			Return([]models.Task{{ID: 1, PostalCode: "01310-100"}}, nil).Once()
		fx.postal.On("LookupPostalCode", mock.Anything, "01310100").Return(paulista, nil).Once()
		fx.coords.On("ResolveCoordinate", mock.Anything, "01310100").Return(coords, nil).Once()
		fx.repo.On("UpdateAddressLocation", ctx, 1, models.ResolutionResult{
			Address:    paulista,
			Coordinate: coords,
			Tier:       models.TierExact,
			Source:     "brasilapi",
		}).Return(nil).Once()

		fx.service.processBatch(ctx)

		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.TaskProcessed.WithLabelValues(statusSuccess)), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(fx.metrics.ActiveWorkers), 0)
	})

	t.Run("fetch returns error", func(t *testing.T) {
		fx := newBackfillFixture(t)
		fx.repo.On("FetchPendingAddresses", ctx, DefaultBatchSize).Return(nil, assert.AnError).Once()

		fx.service.processBatch(ctx)
	})

	t.Run("fetch returns empty list", func(t *testing.T) {
		fx := newBackfillFixture(t)
		fx.repo.On("FetchPendingAddresses", ctx, DefaultBatchSize).Return([]models.Task{}, nil).Once()

		fx.service.processBatch(ctx)
	})

	t.Run("unknown postal code increments failures", func(t *testing.T) {
		fx := newBackfillFixture(t)
		fx.repo.On("FetchPendingAddresses", ctx, DefaultBatchSize).
			Return([]models.Task{{ID: 2, PostalCode: "99999999"}}, nil).Once()
		fx.postal.On("LookupPostalCode", mock.Anything, "99999999").
			Return(nil, models.ErrPostalCodeNotFound).Once()
		fx.repo.On("IncrementFailureCount", ctx, 2, models.ErrPostalCodeNotFound.Error()).Return(nil).Once()

		fx.service.processBatch(ctx)

		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.TaskProcessed.WithLabelValues(statusFailure)), 0)
	})

	t.Run("malformed postal code never reaches providers", func(t *testing.T) {
		fx := newBackfillFixture(t)
		fx.repo.On("FetchPendingAddresses", ctx, DefaultBatchSize).
			Return([]models.Task{{ID: 3, PostalCode: "0131"}}, nil).Once()
		fx.repo.On("IncrementFailureCount", ctx, 3, mock.AnythingOfType("string")).Return(assert.AnError).Once()

		fx.service.processBatch(ctx)

		fx.postal.AssertNotCalled(t, "LookupPostalCode", mock.Anything, mock.Anything)
	})

	t.Run("address without location is recorded as unlocated", func(t *testing.T) {
		fx := newBackfillFixture(t)
		fx.repo.On("FetchPendingAddresses", ctx, DefaultBatchSize).
			Return([]models.Task{{ID: 4, PostalCode: "01310100"}}, nil).Once()
		fx.postal.On("LookupPostalCode", mock.Anything, "01310100").Return(paulista, nil).Once()
		fx.coords.On("ResolveCoordinate", mock.Anything, "01310100").
			Return(nil, models.ErrNoCoordinateAvailable).Once()
		fx.geocoder.On("Search", mock.Anything, mock.Anything, 1).Return([]models.Candidate{}, nil).Times(5)
		fx.repo.On("IncrementFailureCount", ctx, 4, models.ErrNoCoordinateAvailable.Error()).Return(nil).Once()

		fx.service.processBatch(ctx)

		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.TaskProcessed.WithLabelValues(statusUnlocated)), 0)
	})

	t.Run("store error is counted as failure", func(t *testing.T) {
		fx := newBackfillFixture(t)
		fx.repo.On("FetchPendingAddresses", ctx, DefaultBatchSize).
			Return([]models.Task{{ID: 5, PostalCode: "01310100"}}, nil).Once()
		fx.postal.On("LookupPostalCode", mock.Anything, "01310100").Return(paulista, nil).Once()
		fx.coords.On("ResolveCoordinate", mock.Anything, "01310100").Return(coords, nil).Once()
		fx.repo.On("UpdateAddressLocation", ctx, 5, mock.Anything).Return(assert.AnError).Once()

		fx.service.processBatch(ctx)

		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.TaskProcessed.WithLabelValues(statusFailure)), 0)
	})

	t.Run("workers resolve concurrently", func(t *testing.T) {
		fx := newBackfillFixture(t)
		tasks := []models.Task{
			{ID: 10, PostalCode: "01310100"},
			{ID: 11, PostalCode: "01310100"},
			{ID: 12, PostalCode: "01310100"},
			{ID: 13, PostalCode: "01310100"},
		}
		fx.repo.On("FetchPendingAddresses", ctx, DefaultBatchSize).Return(tasks, nil).Once()
		fx.postal.On("LookupPostalCode", mock.Anything, "01310100").Return(paulista, nil).Times(4)
		fx.coords.On("ResolveCoordinate", mock.Anything, "01310100").Return(coords, nil).Times(4)
		fx.repo.On("UpdateAddressLocation", ctx, mock.AnythingOfType("int"), mock.Anything).Return(nil).Times(4)

		fx.service.processBatch(ctx)

		assert.InDelta(t, 4, testutil.ToFloat64(fx.metrics.TaskProcessed.WithLabelValues(statusSuccess)), 0)
	})

	t.Run("run stops with context", func(t *testing.T) {
		fx := newBackfillFixture(t)
		tctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()

		fx.service.Run(tctx)
	})
}
