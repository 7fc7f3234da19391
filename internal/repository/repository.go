package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/locus/internal/models"
)

// MaxResolutionAttempts is the number of failed attempts after which an address is no longer retried.
const MaxResolutionAttempts = 5

// Repository stores resolved locations on customer address records.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface is the storage contract of the address backfill.
type Interface interface {
	FetchPendingAddresses(ctx context.Context, limit int) ([]models.Task, error)
	UpdateAddressLocation(ctx context.Context, addressID int, result models.ResolutionResult) error
	IncrementFailureCount(ctx context.Context, addressID int, errMsg string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
