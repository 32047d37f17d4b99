package handlers

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/errors"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/observability"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/services"
)

// ExportHandlers serves the filtered order table as a CSV download with the
// same columns the source file carries.
type ExportHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewExportHandlers(analytics *services.Analytics, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

var exportColumns = []string{
	"order_id", "order_date", "product_name", "category", "quantity",
	"unit_price", "total_amount", "payment_method", "customer_region",
	"customer_rating",
}

func (h *ExportHandlers) HandleOrdersCSV(w http.ResponseWriter, r *http.Request) {
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

	orders := h.analytics.FilterOrders(from, to)

	filename := fmt.Sprintf("swiftshop_sales_data_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	writer.Write(exportColumns)

	for _, o := range orders {
		writer.Write([]string{
			o.OrderID,
			o.RawDate,
			o.ProductName,
			o.Category,
			strconv.Itoa(o.Quantity),
			strconv.FormatFloat(o.UnitPrice, 'f', 2, 64),
			strconv.FormatFloat(o.TotalAmount, 'f', 2, 64),
			o.PaymentMethod,
			o.CustomerRegion,
			strconv.FormatFloat(o.CustomerRating, 'g', -1, 64),
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Error("csv export failed", "error", err, "request_id", requestID)
	}
}
