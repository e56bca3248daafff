package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mediakit/offload/internal/handlers/render"
	"github.com/mediakit/offload/internal/logger"
	"github.com/mediakit/offload/internal/models"
	"github.com/mediakit/offload/internal/service/resolver"
)

type assetGetter interface {
	Get(ctx context.Context, assetID uuid.UUID) (models.Asset, error)
}

type urlResolver interface {
	Resolve(asset models.Asset, req resolver.Request) string
	RequestForPreset(asset models.Asset, name string) (resolver.Request, error)
	Sources(asset models.Asset, renderWidth int, renderHeight int) []resolver.Source
	PrefetchHost() string
}

type AssetResponse struct {
	ID           string           `json:"id"`
	RelativePath string           `json:"relative_path"`
	MimeType     string           `json:"mime_type"`
	Migrated     bool             `json:"migrated"`
	Width        int              `json:"width,omitempty"`
	Height       int              `json:"height,omitempty"`
	Variants     []models.Variant `json:"variants,omitempty"`

	// Canonical URL for the asset as it should be rendered right now
	URL string `json:"url"`

	// Protocol-relative media host for dns-prefetch hints, remote assets only
	PrefetchHost string `json:"prefetch_host,omitempty"`

	SuppressesLocalSizes bool `json:"suppresses_local_sizes,omitempty"`
}

type ResolveResponse struct {
	URL string `json:"url"`
}

type SourcesResponse struct {
	Sources []resolver.Source `json:"sources"`
}

func assetView(asset models.Asset, res urlResolver) AssetResponse {
	view := AssetResponse{
		ID:           asset.ID.String(),
		RelativePath: asset.RelativePath,
		MimeType:     asset.MimeType,
		Migrated:     asset.Migrated,
		Width:        asset.Width,
		Height:       asset.Height,
		Variants:     asset.Variants,
		URL:          res.Resolve(asset, resolver.Request{}),
	}

	if _, remote := asset.Location().(models.RemoteLocation); remote {
		view.PrefetchHost = res.PrefetchHost()
	}

	return view
}

func handleGetAsset(assets assetGetter, res urlResolver, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		asset, ok := assetFromRequest(w, r, assets, l)
		if !ok {
			return
		}

		render.JSON(w, assetView(asset, res))
	})
}

func handleResolveURL(assets assetGetter, res urlResolver, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		asset, ok := assetFromRequest(w, r, assets, l)
		if !ok {
			return
		}

		var req resolver.Request
		if name := r.URL.Query().Get("preset"); name != "" {
			var err error
			req, err = res.RequestForPreset(asset, name)
			if err != nil {
				renderGatewayError(w, err, l)
				return
			}
		} else {
			width, okW := queryInt(w, r, "width")
			height, okH := queryInt(w, r, "height")
			if !okW || !okH {
				return
			}
			req = resolver.Request{Width: width, Height: height}
		}

		render.JSON(w, ResolveResponse{URL: res.Resolve(asset, req)})
	})
}

func handleSources(assets assetGetter, res urlResolver, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		asset, ok := assetFromRequest(w, r, assets, l)
		if !ok {
			return
		}

		width, okW := queryInt(w, r, "width")
		height, okH := queryInt(w, r, "height")
		if !okW || !okH {
			return
		}
		if width == 0 || height == 0 {
			render.ServiceError(w, "width and height are required", http.StatusBadRequest)
			return
		}

		render.JSON(w, SourcesResponse{Sources: res.Sources(asset, width, height)})
	})
}

func assetFromRequest(w http.ResponseWriter, r *http.Request, assets assetGetter, l logger.Logger) (models.Asset, bool) {
	assetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid asset id", http.StatusBadRequest)
		return models.Asset{}, false
	}

	asset, err := assets.Get(r.Context(), assetID)
	if err != nil {
		renderGatewayError(w, err, l)
		return models.Asset{}, false
	}

	return asset, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		render.ServiceError(w, "Parameter '"+name+"' must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}

	return value, true
}
