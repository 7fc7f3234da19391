//go:build integration

package repository_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/UnknownOlympus/locus/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestRepository_Postgres(t *testing.T) {
	ctx := t.Context()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("locus"),
		postgres.WithUsername("locus"),
		postgres.WithPassword("locus"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := repository.NewDatabaseFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, repository.Schema)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO public.customer_addresses (address_id, postal_code, street, resolution_attempts)
		VALUES (1, '01310100', 'Av. Paulista 1578', 0),
		       (2, '99999999', NULL, 0),
		       (3, '20040002', NULL, 5);
	`)
	require.NoError(t, err)

	repo := repository.NewRepository(pool, slog.Default())

	tasks, err := repo.FetchPendingAddresses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "01310100", tasks[0].PostalCode)

	err = repo.UpdateAddressLocation(ctx, 1, models.ResolutionResult{
		Address: &models.NormalizedAddress{
			Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP",
		},
		Coordinate: &models.GeoCoordinate{Latitude: -23.5613, Longitude: -46.6565},
		Tier:       models.TierExact,
		Source:     "brasilapi",
	})
	require.NoError(t, err)

	var street, city, tier string
	err = pool.QueryRow(ctx,
		`SELECT street, city, precision_tier FROM public.customer_addresses WHERE address_id = 1`,
	).Scan(&street, &city, &tier)
	require.NoError(t, err)
	assert.Equal(t, "Av. Paulista 1578", street, "customer input is kept")
	assert.Equal(t, "São Paulo", city)
	assert.Equal(t, "EXACT", tier)

	for range repository.MaxResolutionAttempts {
		require.NoError(t, repo.IncrementFailureCount(ctx, 2, "postal code not found"))
	}

	tasks, err = repo.FetchPendingAddresses(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
