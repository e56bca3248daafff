package handlers

import (
	"errors"
	"net/http"

	"github.com/mediakit/offload/internal/apperrors"
	"github.com/mediakit/offload/internal/handlers/render"
	"github.com/mediakit/offload/internal/logger"
)

// Error kinds surfaced to the host so it can distinguish a broken
// credential from a flaky network or a refusing remote
const (
	errKindAuthFailed      = "auth_failed"
	errKindTransportFailed = "transport_failed"
	errKindRemoteRejected  = "remote_rejected"
)

// renderGatewayError maps gateway errors onto HTTP statuses. Upstream
// trouble is 502: the gateway itself is fine, the media service is not.
func renderGatewayError(w http.ResponseWriter, err error, l logger.Logger) {
	switch {
	case errors.Is(err, apperrors.ErrAssetNotFound):
		render.ServiceError(w, "Asset not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrPresetNotFound):
		render.ServiceError(w, "Unknown size preset", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrLocalFileMissing):
		render.ServiceError(w, "Local file does not exist", http.StatusUnprocessableEntity)
	case errors.Is(err, apperrors.ErrAuthFailed):
		render.ServiceError(w, errKindAuthFailed, http.StatusBadGateway)
	case errors.Is(err, apperrors.ErrTransportFailed):
		render.ServiceError(w, errKindTransportFailed, http.StatusBadGateway)
	case errors.Is(err, apperrors.ErrRemoteRejected):
		render.ServiceError(w, errKindRemoteRejected, http.StatusBadGateway)
	default:
		l.Error("Unhandled gateway error", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
