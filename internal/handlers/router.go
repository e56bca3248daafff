package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediakit/offload/internal/handlers/middleware"
	"github.com/mediakit/offload/internal/handlers/render"
	"github.com/mediakit/offload/internal/logger"
)

type tokenParser interface {
	Parse(token string) (service string, err error)
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	lc lifecycleService,
	assets assetGetter,
	res urlResolver,
	tokens tokenParser,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(tokens)

	apiv1 := http.NewServeMux()

	apiv1.Handle("POST /events/created", handleCreatedEvent(lc, res, logger))
	apiv1.Handle("POST /events/edited", handleEditedEvent(lc, res, logger))
	apiv1.Handle("POST /events/deleted", handleDeletedEvent(lc, logger))

	apiv1.Handle("GET /assets/{id}", handleGetAsset(assets, res, logger))
	apiv1.Handle("GET /assets/{id}/url", handleResolveURL(assets, res, logger))
	apiv1.Handle("GET /assets/{id}/srcset", handleSources(assets, res, logger))

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", authMiddleware(apiv1)))
	root.Handle("GET /healthz", handleHealthz())
	root.Handle("GET /metrics", promhttp.Handler())

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.MetricsMiddleware(),
	)

	return handler
}

func handleHealthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, map[string]string{"status": "ok"})
	})
}
