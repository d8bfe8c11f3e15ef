// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/nodeglobe/internal/middleware"
)

// Router assembles the handler and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses defaults.
func NewRouter(handler *Handler, config *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(config),
	}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() (http.Handler, error) {
	compress, err := middleware.Compression(router.chiMiddleware.config.CompressionMinSize)
	if err != nil {
		return nil, fmt.Errorf("compression middleware: %w", err)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		if router.handler.perf != nil {
			r.Use(router.handler.perf.Middleware)
		}
		r.Use(compress)

		// Paths stay flat: nested subrouters lose the envelope 404/405.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Get("/clusters", router.handler.Clusters)
			r.Get("/clusters/{id}", router.handler.Cluster)
			r.Get("/clusters/{id}/expand", router.handler.ClusterExpand)
			r.Get("/clusters/{id}/leaves", router.handler.ClusterLeaves)
			r.Get("/clusters/{id}/metrics", router.handler.ClusterMetrics)
			r.Get("/clusters/{id}/spiderfy", router.handler.ClusterSpiderfy)

			r.Get("/index/metrics", router.handler.IndexMetrics)

			r.Get("/nodes/{ip}/history", router.handler.NodeHistory)
			r.Get("/nodes/{ip}/latest", router.handler.NodeLatest)

			r.Get("/debug/performance", router.handler.Performance)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitCustom(RateLimitNavigation))

			r.Get("/navigation", router.handler.View)
			r.Put("/navigation/camera", router.handler.SetCamera)
			r.Post("/navigation/drill-in", router.handler.DrillIn)
			r.Post("/navigation/drill-out", router.handler.DrillOut)
			r.Post("/navigation/unspiderfy", router.handler.Unspiderfy)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r, nil
}
