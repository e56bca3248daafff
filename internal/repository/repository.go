package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediakit/offload/internal/models"
)

// Asset metadata repository interface
// This is the host-side system of record for every asset the gateway has
// observed; once migrated the row is the only place rendering data exists.
type AssetRepo interface {
	// Create asset record
	// If a record with the same id exists already has to return apperrors.ErrAssetExists
	Create(ctx context.Context, asset models.Asset) (models.Asset, error)

	// Get asset by its id
	// If the asset is not found must return apperrors.ErrAssetNotFound
	Get(ctx context.Context, assetID uuid.UUID) (models.Asset, error)

	// Record a completed migration: sets migrated, remote path, dimensions
	// and the synthesized variants in one durable write.
	// Migrated never flips back to false through this interface.
	SetMigrated(ctx context.Context, asset models.Asset) (models.Asset, error)

	// Remove the record. Removing an unknown id is not an error.
	Delete(ctx context.Context, assetID uuid.UUID) error
}

// Storage aggregates repositories and gives transactional scope
type Storage interface {
	Asset() AssetRepo

	// Run fn within a database transaction
	InTx(ctx context.Context, fn func(storage Storage) error) error
}
