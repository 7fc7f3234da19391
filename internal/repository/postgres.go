package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/locus/internal/models"
)

// Schema creates the customer address table used by the backfill.
//
//go:embed schema.sql
var Schema string

// ErrMissingCoordinate is returned when a result without a coordinate is about to be stored.
var ErrMissingCoordinate = errors.New("resolution result has no coordinate")

// FetchPendingAddresses returns customer addresses that have a postal code but no location yet,
// oldest first. Addresses that already failed MaxResolutionAttempts times are left out.
func (r *Repository) FetchPendingAddresses(ctx context.Context, limit int) ([]models.Task, error) {
	var tasks []models.Task
	query := `
		SELECT address_id, postal_code
		FROM public.customer_addresses
		WHERE
			latitude IS NULL
			AND resolution_attempts < $1
			AND postal_code IS NOT NULL AND postal_code <> ''
		ORDER BY created_at ASC
		LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, MaxResolutionAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var task models.Task
		if errScan := rows.Scan(&task.ID, &task.PostalCode); errScan != nil {
			return nil, fmt.Errorf("failed to scan pending address: %w", errScan)
		}
		r.log.DebugContext(ctx, "Pending address received", "id", task.ID, "cep", task.PostalCode)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// UpdateAddressLocation stores the coordinate, its precision tier and the provider that produced it.
// The structured address fills only the columns the customer left empty.
func (r *Repository) UpdateAddressLocation(ctx context.Context, addressID int, result models.ResolutionResult) error {
	if result.Coordinate == nil {
		return fmt.Errorf("failed to update address location: %w", ErrMissingCoordinate)
	}

	var address models.NormalizedAddress
	if result.Address != nil {
		address = *result.Address
	}

	query := `
		UPDATE public.customer_addresses
		SET
			latitude = $1,
			longitude = $2,
			precision_tier = $3,
			source_provider = $4,
			street = COALESCE(NULLIF(street, ''), NULLIF($5, '')),
			neighborhood = COALESCE(NULLIF(neighborhood, ''), NULLIF($6, '')),
			city = COALESCE(NULLIF(city, ''), NULLIF($7, '')),
			state = COALESCE(NULLIF(state, ''), NULLIF($8, '')),
			resolution_error = NULL,
			updated_at = now()
		WHERE
			address_id = $9;
	`

	_, err := r.db.Exec(ctx, query,
		result.Coordinate.Latitude,
		result.Coordinate.Longitude,
		result.Tier.String(),
		result.Source,
		address.Street,
		address.Neighborhood,
		address.City,
		address.State,
		addressID,
	)
	if err != nil {
		return fmt.Errorf("failed to update address location: %w", err)
	}

	return nil
}

// IncrementFailureCount records a failed attempt and its reason.
func (r *Repository) IncrementFailureCount(ctx context.Context, addressID int, errMsg string) error {
	query := `
		UPDATE public.customer_addresses
		SET
			resolution_attempts = resolution_attempts + 1,
			resolution_error = $1,
			updated_at = now()
		WHERE address_id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, addressID)
	if err != nil {
		return fmt.Errorf("failed to update resolution error and number of attempts: %w", err)
	}

	return nil
}
