package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAssetHandlers(t *testing.T) {
	t.Parallel()

	assetID := uuid.New()
	localID := uuid.New()

	assets := fakeAssets{
		assetID: migratedAsset(assetID),
		localID: {
			ID:           localID,
			RelativePath: "2024/05/pending.jpg",
			MimeType:     "image/jpeg",
		},
	}

	srv := newTestRouter(t, &fakeLifecycle{}, assets)

	t.Run("get migrated asset", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/v1/assets/"+assetID.String(), "", "ok")

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, `"url":"https://media.example/i/full/2024/05/photo.jpg"`)
		require.Contains(t, body, `"prefetch_host":"//media.example"`)
	})

	t.Run("get local asset", func(t *testing.T) {
		resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/v1/assets/"+localID.String(), "", "ok")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, `"url":"https://host.example/uploads/2024/05/pending.jpg"`)
		require.NotContains(t, body, "prefetch_host", "local assets need no media host hint")
	})

	t.Run("unknown asset", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/v1/assets/"+uuid.NewString(), "", "ok")

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad asset id", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/v1/assets/42", "", "ok")

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("resolve url", func(t *testing.T) {
		t.Run("by size", func(t *testing.T) {
			resp, body := doRequest(t, http.MethodGet,
				srv.URL+"/api/v1/assets/"+assetID.String()+"/url?width=300&height=200", "", "ok")

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.JSONEq(t, `{"url": "https://media.example/i/width=300&height=200/2024/05/photo.jpg"}`, body)
		})

		t.Run("by preset", func(t *testing.T) {
			resp, body := doRequest(t, http.MethodGet,
				srv.URL+"/api/v1/assets/"+assetID.String()+"/url?preset=medium", "", "ok")

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.JSONEq(t, `{"url": "https://media.example/i/width=300&height=200/2024/05/photo.jpg"}`, body)
		})

		t.Run("no size means full", func(t *testing.T) {
			resp, body := doRequest(t, http.MethodGet,
				srv.URL+"/api/v1/assets/"+assetID.String()+"/url", "", "ok")

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.JSONEq(t, `{"url": "https://media.example/i/full/2024/05/photo.jpg"}`, body)
		})

		t.Run("unknown preset", func(t *testing.T) {
			resp, _ := doRequest(t, http.MethodGet,
				srv.URL+"/api/v1/assets/"+assetID.String()+"/url?preset=banner", "", "ok")

			require.Equal(t, http.StatusNotFound, resp.StatusCode)
		})

		t.Run("bad width", func(t *testing.T) {
			resp, _ := doRequest(t, http.MethodGet,
				srv.URL+"/api/v1/assets/"+assetID.String()+"/url?width=wide", "", "ok")

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	})

	t.Run("srcset", func(t *testing.T) {
		t.Run("sources for render size", func(t *testing.T) {
			resp, body := doRequest(t, http.MethodGet,
				srv.URL+"/api/v1/assets/"+assetID.String()+"/srcset?width=600&height=400", "", "ok")

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.JSONEq(t, `
				{
					"sources": [
						{"url": "https://media.example/i/width=1200&height=800/2024/05/photo.jpg", "width": 1200},
						{"url": "https://media.example/i/width=300&height=200/2024/05/photo.jpg", "width": 300}
					]
				}`, body)
		})

		t.Run("size required", func(t *testing.T) {
			resp, _ := doRequest(t, http.MethodGet,
				srv.URL+"/api/v1/assets/"+assetID.String()+"/srcset?width=600", "", "ok")

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})

		t.Run("local asset has no sources", func(t *testing.T) {
			resp, body := doRequest(t, http.MethodGet,
				srv.URL+"/api/v1/assets/"+localID.String()+"/srcset?width=600&height=400", "", "ok")

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.JSONEq(t, `{"sources": null}`, body)
		})
	})
}
