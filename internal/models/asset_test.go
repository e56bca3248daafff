package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAsset_Location(t *testing.T) {
	t.Run("not migrated is local", func(t *testing.T) {
		asset := Asset{ID: uuid.New(), RelativePath: "2024/05/photo.jpg", MimeType: "image/jpeg"}

		loc, ok := asset.Location().(LocalLocation)

		require.True(t, ok)
		require.Equal(t, "2024/05/photo.jpg", loc.RelativePath)
	})

	t.Run("migrated is remote", func(t *testing.T) {
		asset := Asset{
			ID:           uuid.New(),
			RelativePath: "2024/05/photo.jpg",
			MimeType:     "image/jpeg",
			Migrated:     true,
			Variants:     []Variant{{Name: VariantOriginal, Width: 1200, Height: 800}},
		}

		loc, ok := asset.Location().(RemoteLocation)

		require.True(t, ok)
		require.Equal(t, "2024/05/photo.jpg", loc.RelativePath)
		require.True(t, loc.IsImage)
		require.Len(t, loc.Variants, 1)
	})

	t.Run("legacy record keeps remote path", func(t *testing.T) {
		asset := Asset{ID: uuid.New(), AttachedFile: "2019/11/old.jpg", Migrated: true}

		loc, ok := asset.Location().(RemoteLocation)

		require.True(t, ok)
		require.Equal(t, "2019/11/old.jpg", loc.RelativePath)
		require.False(t, loc.IsImage, "record without mime type is not treated as image")
	})
}

func TestAsset_IsImage(t *testing.T) {
	require.True(t, Asset{MimeType: "image/png"}.IsImage())
	require.True(t, Asset{MimeType: "image/jpeg"}.IsImage())
	require.False(t, Asset{MimeType: "application/pdf"}.IsImage())
	require.False(t, Asset{}.IsImage())
}

func TestAccessToken(t *testing.T) {
	now := time.Now()

	t.Run("valid while before expiry", func(t *testing.T) {
		token := AccessToken{TokenType: "Bearer", Token: "abc", ExpiresAt: now.Add(time.Minute)}

		require.True(t, token.Valid(now))
		require.False(t, token.Valid(now.Add(2*time.Minute)))
	})

	t.Run("no expiry means always valid", func(t *testing.T) {
		token := AccessToken{TokenType: "Bearer", Token: "abc"}

		require.True(t, token.Valid(now.Add(24*365*time.Hour)))
	})

	t.Run("empty token is never valid", func(t *testing.T) {
		require.False(t, AccessToken{}.Valid(now))
	})

	t.Run("authorization header value", func(t *testing.T) {
		token := AccessToken{TokenType: "Bearer", Token: "abc"}

		require.Equal(t, "Bearer abc", token.Authorization())
	})
}
