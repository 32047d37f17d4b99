package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/errors"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/observability"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/services"
)

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	data := h.analytics.Overview()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleOrders(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	from, appErr := dateParam(r, "from")
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, requestID)
		return
	}
	to, appErr := dateParam(r, "to")
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, requestID)
		return
	}
	page, appErr := intParam(r, "page", 0)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, requestID)
		return
	}
	pageSize, appErr := intParam(r, "page_size", services.DefaultPageSize)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, requestID)
		return
	}

	orders, total := h.analytics.OrdersPage(from, to, page, pageSize)

	errors.WriteSuccess(w, map[string]any{
		"orders":    orders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	year, appErr := yearParam(r, h.analytics)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, requestID)
		return
	}

	data := h.analytics.MonthlySales(year)

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"year":   year,
		"months": data,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleSalesShare(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	dimension := r.URL.Query().Get("dimension")
	if dimension == "" {
		dimension = "customer_region"
	}

	data, err := h.analytics.SalesShare(dimension)
	if err != nil {
		errors.WriteError(w, h.logger, queryError(err), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"dimension": dimension,
		"shares":    data,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleAverageRatings(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	dimension := r.URL.Query().Get("dimension")
	if dimension == "" {
		dimension = "product_name"
	}

	data, err := h.analytics.AverageRatings(dimension)
	if err != nil {
		errors.WriteError(w, h.logger, queryError(err), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"dimension": dimension,
		"ratings":   data,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleMonthComparison(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	months, present := listParam(r, "months")
	if !present {
		months = []string{"January"}
	}

	data, err := h.analytics.MonthlyOrderCounts(months)
	if err != nil {
		errors.WriteError(w, h.logger, queryError(err), requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"months": months,
		"counts": data,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleCategoryRegion(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	categories, present := listParam(r, "categories")
	if !present {
		categories = h.analytics.Categories()
	}
	regions, present := listParam(r, "regions")
	if !present {
		regions = h.analytics.Regions()
	}
	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = "category"
	}

	data, err := h.analytics.CategoryRegionOrders(categories, regions, groupBy)
	if err != nil {
		errors.WriteError(w, h.logger, queryError(err), requestID)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"group_by": groupBy,
		"groups":   data,
	})
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
	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
