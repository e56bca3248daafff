package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/mediakit/offload/internal/apperrors"
	"github.com/mediakit/offload/internal/models"
	"github.com/mediakit/offload/internal/testutil"
)

func TestAssetRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withRepo := func(t *testing.T, fn func(repo *AssetRepo)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(&AssetRepo{DB: tx})
		})
	}

	newAsset := func() models.Asset {
		return models.Asset{
			ID:           uuid.New(),
			RelativePath: "2024/05/photo.jpg",
			MimeType:     "image/jpeg",
		}
	}

	t.Run("Create", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				asset, err := repo.Create(t.Context(), newAsset())

				require.NoError(t, err, "creating asset should not fail")
				require.Equal(t, "2024/05/photo.jpg", asset.RelativePath)
				require.Equal(t, "image/jpeg", asset.MimeType)
				require.False(t, asset.Migrated, "asset starts un-migrated")
				require.NotZero(t, asset.CreatedAt)
				require.NotZero(t, asset.ModifiedAt)
				require.Empty(t, asset.Variants)
			})
		})

		t.Run("error if already exists", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				asset := newAsset()

				_, err := repo.Create(t.Context(), asset)
				require.NoError(t, err)

				_, err = repo.Create(t.Context(), asset)
				require.ErrorIs(t, err, apperrors.ErrAssetExists)
			})
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("get ok", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				created, err := repo.Create(t.Context(), newAsset())
				require.NoError(t, err)

				got, err := repo.Get(t.Context(), created.ID)

				require.NoError(t, err)
				require.Equal(t, created.ID, got.ID)
				require.Equal(t, created.RelativePath, got.RelativePath)
			})
		})

		t.Run("not found", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				_, err := repo.Get(t.Context(), uuid.New())

				require.ErrorIs(t, err, apperrors.ErrAssetNotFound)
			})
		})
	})

	t.Run("SetMigrated", func(t *testing.T) {
		t.Run("records migration in one write", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				asset, err := repo.Create(t.Context(), newAsset())
				require.NoError(t, err)

				asset.Width = 1200
				asset.Height = 800
				asset.Variants = []models.Variant{
					{Name: "original", FileName: "photo.jpg", Width: 1200, Height: 800, MimeType: "image/jpeg"},
					{Name: "thumbnail", FileName: "photo.jpg", Width: 150, Height: 150, MimeType: "image/jpeg"},
				}

				migrated, err := repo.SetMigrated(t.Context(), asset)
				require.NoError(t, err)
				require.True(t, migrated.Migrated)

				// Read back: the row must carry everything rendering needs
				got, err := repo.Get(t.Context(), asset.ID)
				require.NoError(t, err)
				require.True(t, got.Migrated)
				require.Equal(t, 1200, got.Width)
				require.Equal(t, 800, got.Height)
				require.Equal(t, asset.Variants, got.Variants, "variants should survive the jsonb roundtrip")
			})
		})

		t.Run("repeated call refreshes metadata", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				asset, err := repo.Create(t.Context(), newAsset())
				require.NoError(t, err)

				_, err = repo.SetMigrated(t.Context(), asset)
				require.NoError(t, err)

				asset.RelativePath = "2024/05/photo-e1.jpg"
				got, err := repo.SetMigrated(t.Context(), asset)

				require.NoError(t, err)
				require.True(t, got.Migrated)
				require.Equal(t, "2024/05/photo-e1.jpg", got.RelativePath)
			})
		})

		t.Run("not found", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				_, err := repo.SetMigrated(t.Context(), newAsset())

				require.ErrorIs(t, err, apperrors.ErrAssetNotFound)
			})
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("delete ok", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				asset, err := repo.Create(t.Context(), newAsset())
				require.NoError(t, err)

				require.NoError(t, repo.Delete(t.Context(), asset.ID))

				_, err = repo.Get(t.Context(), asset.ID)
				require.ErrorIs(t, err, apperrors.ErrAssetNotFound)
			})
		})

		t.Run("unknown id is not an error", func(t *testing.T) {
			withRepo(t, func(repo *AssetRepo) {
				require.NoError(t, repo.Delete(t.Context(), uuid.New()))
			})
		})
	})

	t.Run("legacy attached file roundtrip", func(t *testing.T) {
		withRepo(t, func(repo *AssetRepo) {
			asset := newAsset()
			asset.RelativePath = ""
			asset.AttachedFile = "2019/11/old.jpg"

			created, err := repo.Create(t.Context(), asset)
			require.NoError(t, err)

			got, err := repo.Get(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, "2019/11/old.jpg", got.AttachedFile)
			require.Equal(t, "2019/11/old.jpg", got.RemotePath(), "legacy field backs the remote path")
		})
	})
}
