package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mediakit/offload/internal/handlers/render"
	"github.com/mediakit/offload/internal/logger"
	"github.com/mediakit/offload/internal/models"
)

// lifecycleService is the gateway surface the host event endpoints call
type lifecycleService interface {
	// Offload a freshly created asset
	// Upload errors keep the asset un-migrated and are reported upstream
	OnCreated(ctx context.Context, assetID uuid.UUID, localPath string) (models.Asset, error)

	// Re-offload an asset the host edited and resaved locally
	OnEdited(ctx context.Context, assetID uuid.UUID, localPath string) (models.Asset, error)

	// Best-effort remote cleanup for an asset the host is deleting
	OnDeleted(ctx context.Context, assetID uuid.UUID) (remoteDeleted bool, err error)

	// Capability flag the host honors to skip local size derivation
	SuppressesLocalSizes() bool
}

type AssetEventRequest struct {
	AssetID   string `json:"asset_id" validate:"required,uuid"`
	LocalPath string `json:"local_path" validate:"required"`
}

type DeletedEventRequest struct {
	AssetID string `json:"asset_id" validate:"required,uuid"`
}

type DeletedEventResponse struct {
	RemoteDeleted bool `json:"remote_deleted"`
}

func handleCreatedEvent(lc lifecycleService, res urlResolver, l logger.Logger) http.Handler {
	return handleUploadEvent(lc.OnCreated, lc, res, l, http.StatusCreated)
}

func handleEditedEvent(lc lifecycleService, res urlResolver, l logger.Logger) http.Handler {
	return handleUploadEvent(lc.OnEdited, lc, res, l, http.StatusOK)
}

func handleUploadEvent(
	event func(ctx context.Context, assetID uuid.UUID, localPath string) (models.Asset, error),
	lc lifecycleService,
	res urlResolver,
	l logger.Logger,
	successCode int,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[AssetEventRequest](w, r)
		if err != nil {
			return
		}

		// Validator guarantees a parsable UUID here
		assetID := uuid.MustParse(req.AssetID)

		asset, err := event(r.Context(), assetID, req.LocalPath)
		if err != nil {
			renderGatewayError(w, err, l)
			return
		}

		view := assetView(asset, res)
		view.SuppressesLocalSizes = lc.SuppressesLocalSizes()
		render.JSONWithStatus(w, view, successCode)
	})
}

func handleDeletedEvent(lc lifecycleService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[DeletedEventRequest](w, r)
		if err != nil {
			return
		}

		remoteDeleted, err := lc.OnDeleted(r.Context(), uuid.MustParse(req.AssetID))
		if err != nil {
			renderGatewayError(w, err, l)
			return
		}

		render.JSON(w, DeletedEventResponse{RemoteDeleted: remoteDeleted})
	})
}
