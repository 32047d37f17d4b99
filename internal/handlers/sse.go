package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/models"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

var ordersTableTemplate = template.Must(template.New("ordersTable").Parse(`
<div id="orders-table">
<table class="modern-table">
<thead><tr><th>Order ID</th><th>Date</th><th>Product</th><th>Category</th><th>Qty</th><th>Unit Price</th><th>Total</th><th>Payment</th><th>Region</th><th>Rating</th></tr></thead>
<tbody>
{{range .Orders}}<tr>
<td>{{.OrderID}}</td>
<td>{{.RawDate}}</td>
<td>{{.ProductName}}</td>
<td><span class="category-badge">{{.Category}}</span></td>
<td>{{.Quantity}}</td>
<td>${{printf "%.2f" .UnitPrice}}</td>
<td><strong>${{printf "%.2f" .TotalAmount}}</strong></td>
<td>{{.PaymentMethod}}</td>
<td>{{.CustomerRegion}}</td>
<td>{{printf "%.1f" .CustomerRating}}</td>
</tr>{{else}}<tr><td colspan="10" class="empty-row">No orders in the selected date range</td></tr>{{end}}
</tbody>
</table>
<div class="table-footer">
<button class="page-btn" data-on-click="$page = {{.PrevPage}}; @get('/sse/orders-table')"{{if le .Page 0}} disabled{{end}}>Previous</button>
<span class="page-info">Page {{.PageLabel}} of {{.PageCount}} ({{.Total}} orders)</span>
<button class="page-btn" data-on-click="$page = {{.NextPage}}; @get('/sse/orders-table')"{{if .LastPage}} disabled{{end}}>Next</button>
</div>
</div>`))

type ordersTableView struct {
	Orders    []models.Order
	Page      int
	PageCount int
	Total     int
}

func (v ordersTableView) PageLabel() int { return v.Page + 1 }

func (v ordersTableView) PrevPage() int {
	if v.Page <= 0 {
		return 0
	}
	return v.Page - 1
}

func (v ordersTableView) NextPage() int {
	if v.LastPage() {
		return v.Page
	}
	return v.Page + 1
}

func (v ordersTableView) LastPage() bool { return v.Page >= v.PageCount-1 }

// dashboardSignals is the browser-side state the datastar attributes bind.
// Every SSE endpoint receives the full set and picks what it needs.
type dashboardSignals struct {
	Year       string   `json:"year"`
	ShareDim   string   `json:"shareDim"`
	RatingDim  string   `json:"ratingDim"`
	Months     []string `json:"months"`
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
	GroupBy    string   `json:"groupBy"`
	FromDate   string   `json:"fromDate"`
	ToDate     string   `json:"toDate"`
	Page       int      `json:"page"`
}

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// readSignals decodes the browser signals from the request. A plain GET
// without the datastar payload renders with zero-value signals, so every
// endpoint falls back to its defaults.
func (h *SSEHandlers) readSignals(r *http.Request) (dashboardSignals, error) {
	var signals dashboardSignals
	if r.Method == http.MethodGet && !r.URL.Query().Has("datastar") {
		return signals, nil
	}
	err := datastar.ReadSignals(r, &signals)
	return signals, err
}

func chartFragment(id, svg string) string {
	return fmt.Sprintf(`<div id=%q class="chart-box">%s</div>`, id, svg)
}

func hintFragment(id, message string) string {
	return fmt.Sprintf(`<div id=%q class="chart-box"><p class="chart-hint">%s</p></div>`, id, message)
}

func (h *SSEHandlers) HandleOrdersTable(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, err := h.readSignals(r)
	if err != nil {
		h.logger.Error("read signals", "error", err)
		return
	}

	h.patchOrdersTable(sse, signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, err := h.readSignals(r)
	if err != nil {
		h.logger.Error("read signals", "error", err)
		return
	}

	h.patchMonthlySales(sse, signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleSalesShare(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, err := h.readSignals(r)
	if err != nil {
		h.logger.Error("read signals", "error", err)
		return
	}

	h.patchSalesShare(sse, signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleAverageRatings(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, err := h.readSignals(r)
	if err != nil {
		h.logger.Error("read signals", "error", err)
		return
	}

	h.patchAverageRatings(sse, signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleMonthComparison(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, err := h.readSignals(r)
	if err != nil {
		h.logger.Error("read signals", "error", err)
		return
	}

	h.patchMonthComparison(sse, signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleCategoryRegion(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, err := h.readSignals(r)
	if err != nil {
		h.logger.Error("read signals", "error", err)
		return
	}

	h.patchCategoryRegion(sse, signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefreshAll repaints every chart and the order table in one SSE
// response, using the current browser signals.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, err := h.readSignals(r)
	if err != nil {
		h.logger.Error("read signals", "error", err)
		return
	}

	h.patchMonthlySales(sse, signals)
	h.patchSalesShare(sse, signals)
	h.patchAverageRatings(sse, signals)
	h.patchMonthComparison(sse, signals)
	h.patchCategoryRegion(sse, signals)
	h.patchOrdersTable(sse, signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patchOrdersTable(sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	from := h.signalDate(signals.FromDate)
	to := h.signalDate(signals.ToDate)

	orders, total := h.analytics.OrdersPage(from, to, signals.Page, services.DefaultPageSize)

	pageCount := (total + services.DefaultPageSize - 1) / services.DefaultPageSize
	if pageCount < 1 {
		pageCount = 1
	}

	// A filter change can strand the page index past the new end.
	page := signals.Page
	if page >= pageCount {
		page = pageCount - 1
		orders, total = h.analytics.OrdersPage(from, to, page, services.DefaultPageSize)
	}
	if page < 0 {
		page = 0
	}

	var buf strings.Builder
	err := ordersTableTemplate.Execute(&buf, ordersTableView{
		Orders:    orders,
		Page:      page,
		PageCount: pageCount,
		Total:     total,
	})
	if err != nil {
		h.logger.Error("render orders table", "error", err)
		return
	}
	sse.PatchElements(buf.String())

	jsonData, err := json.Marshal(map[string]any{
		"page":        page,
		"ordersTotal": total,
	})
	if err != nil {
		h.logger.Error("marshal table signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
}

func (h *SSEHandlers) patchMonthlySales(sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	year := h.resolveYear(signals.Year)
	if year == 0 {
		sse.PatchElements(hintFragment("monthly-sales-chart", "No sales data loaded"))
		return
	}

	data := h.analytics.MonthlySales(year)
	if len(data) == 0 {
		sse.PatchElements(hintFragment("monthly-sales-chart", fmt.Sprintf("No sales recorded in %d", year)))
		return
	}

	svg, err := renderChartSVG(monthlySalesChart(year, data))
	if err != nil {
		h.logger.Error("render monthly sales chart", "error", err)
		return
	}
	sse.PatchElements(chartFragment("monthly-sales-chart", svg))

	jsonData, err := json.Marshal(map[string]any{"monthlySales": data})
	if err != nil {
		h.logger.Error("marshal monthly sales data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
}

func (h *SSEHandlers) patchSalesShare(sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	dimension := signals.ShareDim
	if dimension == "" {
		dimension = "customer_region"
	}

	data, err := h.analytics.SalesShare(dimension)
	if err != nil {
		h.logger.Warn("sales share query", "error", err, "dimension", dimension)
		sse.PatchElements(hintFragment("sales-share-chart", "Unknown grouping for the sales share chart"))
		return
	}
	if len(data) == 0 {
		sse.PatchElements(hintFragment("sales-share-chart", "No sales data loaded"))
		return
	}

	svg, err := renderChartSVG(salesShareChart(dimension, data))
	if err != nil {
		h.logger.Error("render sales share chart", "error", err)
		return
	}
	sse.PatchElements(chartFragment("sales-share-chart", svg))

	jsonData, err := json.Marshal(map[string]any{"salesShare": data})
	if err != nil {
		h.logger.Error("marshal sales share data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
}

func (h *SSEHandlers) patchAverageRatings(sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	dimension := signals.RatingDim
	if dimension == "" {
		dimension = "product_name"
	}

	data, err := h.analytics.AverageRatings(dimension)
	if err != nil {
		h.logger.Warn("average ratings query", "error", err, "dimension", dimension)
		sse.PatchElements(hintFragment("average-ratings-chart", "Unknown grouping for the ratings chart"))
		return
	}
	if len(data) == 0 {
		sse.PatchElements(hintFragment("average-ratings-chart", "No rating data loaded"))
		return
	}

	svg, err := renderChartSVG(averageRatingsChart(dimension, data))
	if err != nil {
		h.logger.Error("render average ratings chart", "error", err)
		return
	}
	sse.PatchElements(chartFragment("average-ratings-chart", svg))

	jsonData, err := json.Marshal(map[string]any{"averageRatings": data})
	if err != nil {
		h.logger.Error("marshal average ratings data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
}

func (h *SSEHandlers) patchMonthComparison(sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	if len(signals.Months) == 0 {
		sse.PatchElements(hintFragment("month-comparison-chart", "Select at least one month to compare years"))
		return
	}

	data, err := h.analytics.MonthlyOrderCounts(signals.Months)
	if err != nil {
		h.logger.Warn("month comparison query", "error", err, "months", signals.Months)
		sse.PatchElements(hintFragment("month-comparison-chart", "Unknown month in the selection"))
		return
	}

	allZero := true
	for _, d := range data {
		if d.Orders > 0 {
			allZero = false
			break
		}
	}
	if len(data) == 0 || allZero {
		sse.PatchElements(hintFragment("month-comparison-chart", "No orders recorded in the selected months"))
		return
	}

	svg, err := renderChartSVG(monthComparisonChart(data))
	if err != nil {
		h.logger.Error("render month comparison chart", "error", err)
		return
	}
	sse.PatchElements(chartFragment("month-comparison-chart", svg))

	jsonData, err := json.Marshal(map[string]any{"monthComparison": data})
	if err != nil {
		h.logger.Error("marshal month comparison data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
}

func (h *SSEHandlers) patchCategoryRegion(sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	if len(signals.Categories) == 0 || len(signals.Regions) == 0 {
		sse.PatchElements(hintFragment("category-region-chart", "Select at least one category and one region"))
		return
	}

	groupBy := signals.GroupBy
	if groupBy == "" {
		groupBy = "category"
	}

	data, err := h.analytics.CategoryRegionOrders(signals.Categories, signals.Regions, groupBy)
	if err != nil {
		h.logger.Warn("category region query", "error", err, "group_by", groupBy)
		sse.PatchElements(hintFragment("category-region-chart", "Unknown grouping for the category chart"))
		return
	}
	if len(data) == 0 {
		sse.PatchElements(hintFragment("category-region-chart", "No orders match the selected filters"))
		return
	}

	svg, err := renderChartSVG(categoryRegionChart(data, groupBy))
	if err != nil {
		h.logger.Error("render category region chart", "error", err)
		return
	}
	sse.PatchElements(chartFragment("category-region-chart", svg))

	jsonData, err := json.Marshal(map[string]any{"categoryRegion": data})
	if err != nil {
		h.logger.Error("marshal category region data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
}

// resolveYear picks the chart year from the signal value, falling back to
// the most recent year in the dataset. Zero means no data at all.
func (h *SSEHandlers) resolveYear(raw string) int {
	if raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			return year
		}
		h.logger.Warn("invalid year signal", "value", raw)
	}

	years := h.analytics.Years()
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}

func (h *SSEHandlers) signalDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		h.logger.Warn("invalid date signal", "value", raw)
		return nil
	}
	return &t
}
