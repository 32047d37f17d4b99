package server

import (
	"log/slog"
	"net/http"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/handlers"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/services"
)

type Server struct {
	analytics     *services.Analytics
	mux           *http.ServeMux
	logger        *slog.Logger
	apiHandlers   *handlers.APIHandlers
	sseHandlers   *handlers.SSEHandlers
	chartHandlers *handlers.ChartHandlers
	exportHandler *handlers.ExportHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:     analytics,
		mux:           http.NewServeMux(),
		logger:        logger,
		apiHandlers:   handlers.NewAPIHandlers(analytics, logger),
		sseHandlers:   handlers.NewSSEHandlers(analytics, logger),
		chartHandlers: handlers.NewChartHandlers(analytics, logger),
		exportHandler: handlers.NewExportHandlers(analytics, logger),
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
	s.mux.HandleFunc("GET /api/orders", s.apiHandlers.HandleOrders)
	s.mux.HandleFunc("GET /api/monthly-sales", s.apiHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /api/sales-share", s.apiHandlers.HandleSalesShare)
	s.mux.HandleFunc("GET /api/average-ratings", s.apiHandlers.HandleAverageRatings)
	s.mux.HandleFunc("GET /api/month-comparison", s.apiHandlers.HandleMonthComparison)
	s.mux.HandleFunc("GET /api/category-region", s.apiHandlers.HandleCategoryRegion)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/orders-table", s.sseHandlers.HandleOrdersTable)
	s.mux.HandleFunc("GET /sse/monthly-sales", s.sseHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /sse/sales-share", s.sseHandlers.HandleSalesShare)
	s.mux.HandleFunc("GET /sse/average-ratings", s.sseHandlers.HandleAverageRatings)
	s.mux.HandleFunc("GET /sse/month-comparison", s.sseHandlers.HandleMonthComparison)
	s.mux.HandleFunc("GET /sse/category-region", s.sseHandlers.HandleCategoryRegion)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)

	// Downloads
	s.mux.HandleFunc("GET /export/orders.csv", s.exportHandler.HandleOrdersCSV)
	s.mux.HandleFunc("GET /charts/monthly-sales.png", s.chartHandlers.HandleMonthlySalesPNG)
	s.mux.HandleFunc("GET /charts/sales-share.png", s.chartHandlers.HandleSalesSharePNG)
	s.mux.HandleFunc("GET /charts/average-ratings.png", s.chartHandlers.HandleAverageRatingsPNG)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
