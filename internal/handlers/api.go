package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"soda-dashboard/internal/errors"
	"soda-dashboard/internal/observability"
	"soda-dashboard/internal/services"
)

const (
	maxBrands      = 10
	maxParents     = 5
	maxVelocity    = 10
	maxProxy       = 10
	maxPackSizes   = 6
	maxComparisons = 8
)

// The catalog is immutable after startup, so every panel is safe to cache.
var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	catalog *services.Catalog
	logger  *slog.Logger
}

func NewAPIHandlers(catalog *services.Catalog, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.Overview(), cacheHeaders)
}

func (h *APIHandlers) HandleBrandRevenue(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.BrandRevenue(maxBrands), cacheHeaders)
}

func (h *APIHandlers) HandleParentShare(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.ParentShare(maxParents), cacheHeaders)
}

func (h *APIHandlers) HandleTypePerformance(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.TypePerformance(), cacheHeaders)
}

func (h *APIHandlers) HandleTypeBrands(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.TypeBrandSplits(), cacheHeaders)
}

func (h *APIHandlers) HandleTopVelocity(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.TopVelocity(maxVelocity), cacheHeaders)
}

func (h *APIHandlers) HandleParents(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.Parents(maxParents*2), cacheHeaders)
}

func (h *APIHandlers) HandleParentDrilldown(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	name := r.URL.Query().Get("name")
	if name == "" {
		errors.WriteError(w, h.logger, errors.BadRequest("missing parent name"), requestID)
		return
	}

	drill, ok := h.catalog.ParentDrilldown(name)
	if !ok {
		errors.WriteError(w, h.logger, errors.NotFound("unknown parent brand"), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, drill, cacheHeaders)
}

func (h *APIHandlers) HandleWalmartOverview(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Overview   any `json:"overview"`
		TypeCounts any `json:"type_counts"`
		PackSizes  any `json:"pack_sizes"`
	}{
		Overview:   h.catalog.WalmartOverview(),
		TypeCounts: h.catalog.TypeCounts(),
		PackSizes:  h.catalog.PackSizes(maxPackSizes),
	}

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleTopProxy(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.TopProxy(maxProxy), cacheHeaders)
}

func (h *APIHandlers) HandlePrivateLabel(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.PrivateLabel(), cacheHeaders)
}

func (h *APIHandlers) HandlePriceComparison(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.catalog.PriceComparison(maxComparisons), cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.catalog.Stats())
}
