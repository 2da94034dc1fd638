package server

import (
	"log/slog"
	"net/http"

	"soda-dashboard/internal/handlers"
	"soda-dashboard/internal/services"
)

type Server struct {
	catalog     *services.Catalog
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(catalog *services.Catalog, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		catalog:     catalog,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(catalog, logger),
		sseHandlers: handlers.NewSSEHandlers(catalog, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/overview", s.apiHandlers.HandleOverview)
	s.mux.HandleFunc("GET /api/amazon/brand-revenue", s.apiHandlers.HandleBrandRevenue)
	s.mux.HandleFunc("GET /api/amazon/parent-share", s.apiHandlers.HandleParentShare)
	s.mux.HandleFunc("GET /api/amazon/type-performance", s.apiHandlers.HandleTypePerformance)
	s.mux.HandleFunc("GET /api/amazon/type-brands", s.apiHandlers.HandleTypeBrands)
	s.mux.HandleFunc("GET /api/amazon/top-velocity", s.apiHandlers.HandleTopVelocity)
	s.mux.HandleFunc("GET /api/amazon/parents", s.apiHandlers.HandleParents)
	s.mux.HandleFunc("GET /api/amazon/parent", s.apiHandlers.HandleParentDrilldown)
	s.mux.HandleFunc("GET /api/walmart/overview", s.apiHandlers.HandleWalmartOverview)
	s.mux.HandleFunc("GET /api/walmart/top-proxy", s.apiHandlers.HandleTopProxy)
	s.mux.HandleFunc("GET /api/walmart/private-label", s.apiHandlers.HandlePrivateLabel)
	s.mux.HandleFunc("GET /api/compare/prices", s.apiHandlers.HandlePriceComparison)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/overview", s.sseHandlers.HandleOverview)
	s.mux.HandleFunc("GET /sse/amazon", s.sseHandlers.HandleAmazon)
	s.mux.HandleFunc("GET /sse/walmart", s.sseHandlers.HandleWalmart)
	s.mux.HandleFunc("GET /sse/compare", s.sseHandlers.HandleCompare)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
