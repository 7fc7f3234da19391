package resolver_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/resolver"
	"github.com/UnknownOlympus/locus/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Get(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	built := 0
	factory := func() *resolver.Resolver {
		built++
		return resolver.New(slog.Default(), mocks.NewPostalRegistry(t), mocks.NewCoordinateRegistry(t),
			mocks.NewGeocoder(t), m, resolver.Options{})
	}
	registry := resolver.NewRegistry(factory, resolver.DefaultSources()...)

	checkout, err := registry.Get(resolver.SourceCheckout)
	require.NoError(t, err)
	again, err := registry.Get(resolver.SourceCheckout)
	require.NoError(t, err)
	assert.Same(t, checkout, again)

	search, err := registry.Get(resolver.SourceMapSearch)
	require.NoError(t, err)
	assert.NotSame(t, checkout, search)

	fallback, err := registry.Get("")
	require.NoError(t, err)
	defaultRes, err := registry.Get(resolver.SourceDefault)
	require.NoError(t, err)
	assert.Same(t, fallback, defaultRes)

	assert.Equal(t, 3, built)

	_, err = registry.Get("mobile-app")
	require.ErrorIs(t, err, resolver.ErrUnknownSource)
}
