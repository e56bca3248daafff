package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mediakit/offload/internal/apperrors"
	"github.com/mediakit/offload/internal/models"
)

type AssetRepo struct {
	DB DBTX
}

const assetColumns = `id, created_at, modified_at, relative_path, attached_file, mime_type, migrated, width, height, variants`

const createAsset = `-- name: CreateAsset
INSERT INTO assets (id, created_at, modified_at, relative_path, attached_file, mime_type, migrated, width, height, variants)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + assetColumns

func (r *AssetRepo) Create(ctx context.Context, a models.Asset) (models.Asset, error) {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.ModifiedAt.IsZero() {
		a.ModifiedAt = now
	}

	variants, err := marshalVariants(a.Variants)
	if err != nil {
		return a, err
	}

	rows, _ := r.DB.Query(ctx, createAsset,
		a.ID, a.CreatedAt, a.ModifiedAt, a.RelativePath, a.AttachedFile, a.MimeType, a.Migrated, a.Width, a.Height, variants,
	)
	asset, err := pgx.CollectOneRow(rows, rowToAsset)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return asset, apperrors.ErrAssetExists
		}

		return asset, fmt.Errorf("db error: %w", err)
	}

	return asset, nil
}

const getAsset = `-- name: GetAsset
SELECT ` + assetColumns + ` FROM assets
WHERE id = $1
`

func (r *AssetRepo) Get(ctx context.Context, assetID uuid.UUID) (models.Asset, error) {
	rows, _ := r.DB.Query(ctx, getAsset, assetID)
	asset, err := pgx.CollectOneRow(rows, rowToAsset)

	switch {
	case err == nil:
		return asset, nil
	case errors.Is(err, pgx.ErrNoRows):
		return asset, apperrors.ErrAssetNotFound
	default:
		return asset, fmt.Errorf("db error: %w", err)
	}
}

// Flip to migrated and record everything rendering needs in one write
// The flag only ever moves false -> true here; a repeated call refreshes
// the remote metadata (edit-and-resave does exactly that)
const setMigrated = `-- name: SetMigrated
UPDATE assets
SET migrated = true, modified_at = $2, relative_path = $3, mime_type = $4, width = $5, height = $6, variants = $7
WHERE id = $1
RETURNING ` + assetColumns

func (r *AssetRepo) SetMigrated(ctx context.Context, a models.Asset) (models.Asset, error) {
	variants, err := marshalVariants(a.Variants)
	if err != nil {
		return a, err
	}

	rows, _ := r.DB.Query(ctx, setMigrated,
		a.ID, time.Now(), a.RelativePath, a.MimeType, a.Width, a.Height, variants,
	)
	asset, err := pgx.CollectOneRow(rows, rowToAsset)

	switch {
	case err == nil:
		return asset, nil
	case errors.Is(err, pgx.ErrNoRows):
		return asset, apperrors.ErrAssetNotFound
	default:
		return asset, fmt.Errorf("db error: %w", err)
	}
}

const deleteAsset = `-- name: DeleteAsset
DELETE FROM assets
WHERE id = $1
`

func (r *AssetRepo) Delete(ctx context.Context, assetID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, deleteAsset, assetID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToAsset(row pgx.CollectableRow) (models.Asset, error) {
	var a models.Asset
	var variants []byte

	err := row.Scan(&a.ID, &a.CreatedAt, &a.ModifiedAt, &a.RelativePath, &a.AttachedFile, &a.MimeType, &a.Migrated, &a.Width, &a.Height, &variants)
	if err != nil {
		return a, err
	}

	if err := json.Unmarshal(variants, &a.Variants); err != nil {
		return a, fmt.Errorf("malformed variants column: %w", err)
	}

	return a, nil
}

func marshalVariants(variants []models.Variant) ([]byte, error) {
	if variants == nil {
		variants = []models.Variant{}
	}

	b, err := json.Marshal(variants)
	if err != nil {
		return nil, fmt.Errorf("failed to encode variants: %w", err)
	}

	return b, nil
}
