package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/errors"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/models"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/observability"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/services"
)

const (
	chartWidth  = 900
	chartHeight = 400
	pieWidth    = 560
)

// ChartHandlers serves the dashboard charts as downloadable PNGs. The same
// chart builders feed the SSE handlers, which patch them in as SVG.
type ChartHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewChartHandlers(analytics *services.Analytics, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *ChartHandlers) HandleMonthlySalesPNG(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	year, err := yearParam(r, h.analytics)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	data := h.analytics.MonthlySales(year)
	if len(data) == 0 {
		errors.WriteError(w, h.logger, errors.NotFound(fmt.Sprintf("no sales recorded in %d", year)), requestID)
		return
	}

	h.writePNG(w, requestID, monthlySalesChart(year, data))
}

func (h *ChartHandlers) HandleSalesSharePNG(w http.ResponseWriter, r *http.Request) {
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
	if len(data) == 0 {
		errors.WriteError(w, h.logger, errors.NotFound("no sales data loaded"), requestID)
		return
	}

	h.writePNG(w, requestID, salesShareChart(dimension, data))
}

func (h *ChartHandlers) HandleAverageRatingsPNG(w http.ResponseWriter, r *http.Request) {
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
	if len(data) == 0 {
		errors.WriteError(w, h.logger, errors.NotFound("no rating data loaded"), requestID)
		return
	}

	h.writePNG(w, requestID, averageRatingsChart(dimension, data))
}

// writePNG renders into a buffer first so a renderer failure can still
// produce a JSON error instead of a truncated image.
func (h *ChartHandlers) writePNG(w http.ResponseWriter, requestID string, graph renderable) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "chart rendering failed"), requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.Write(buf.Bytes())
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderChartSVG(graph renderable) (string, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func monthlySalesChart(year int, data []models.MonthlySales) chart.BarChart {
	bars := make([]chart.Value, 0, len(data))
	for _, m := range data {
		bars = append(bars, chart.Value{
			Value: m.Total,
			Label: m.Month[:3],
		})
	}

	return chart.BarChart{
		Title:      fmt.Sprintf("Monthly Sales for %d", year),
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   48,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
		YAxis: chart.YAxis{
			ValueFormatter: dollarFormatter,
		},
	}
}

func salesShareChart(dimension string, data []models.DimensionTotal) chart.PieChart {
	var total float64
	for _, d := range data {
		total += d.Total
	}

	values := make([]chart.Value, 0, len(data))
	for _, d := range data {
		label := d.Label
		if total > 0 {
			label = fmt.Sprintf("%s (%.1f%%)", d.Label, d.Total/total*100)
		}
		values = append(values, chart.Value{Value: d.Total, Label: label})
	}

	return chart.PieChart{
		Title:  fmt.Sprintf("Sales Share by %s", dimensionTitle(dimension)),
		Width:  pieWidth,
		Height: chartHeight,
		Values: values,
	}
}

func averageRatingsChart(dimension string, data []models.RatingSummary) chart.BarChart {
	bars := make([]chart.Value, 0, len(data))
	for _, rs := range data {
		bars = append(bars, chart.Value{Value: rs.AvgRating, Label: rs.Label})
	}

	return chart.BarChart{
		Title:      fmt.Sprintf("Average Rating by %s", dimensionTitle(dimension)),
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   48,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 5},
		},
	}
}

// monthComparisonChart lays year-over-year order counts side by side, one
// bar per (month, year), colored by year.
func monthComparisonChart(data []models.MonthYearOrders) chart.BarChart {
	yearIndex := make(map[int]int)
	for _, d := range data {
		if _, ok := yearIndex[d.Year]; !ok {
			yearIndex[d.Year] = len(yearIndex)
		}
	}

	bars := make([]chart.Value, 0, len(data))
	for _, d := range data {
		color := chart.GetDefaultColor(yearIndex[d.Year])
		bars = append(bars, chart.Value{
			Value: float64(d.Orders),
			Label: fmt.Sprintf("%s %d", d.Month[:3], d.Year),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	return chart.BarChart{
		Title:      "Order Count by Month and Year",
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   42,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
}

// categoryRegionChart shows distinct order counts per primary/secondary
// group pair, colored by the secondary value.
func categoryRegionChart(data []models.GroupedOrders, groupBy string) chart.BarChart {
	secondaryIndex := make(map[string]int)
	for _, d := range data {
		if _, ok := secondaryIndex[d.Secondary]; !ok {
			secondaryIndex[d.Secondary] = len(secondaryIndex)
		}
	}

	bars := make([]chart.Value, 0, len(data))
	for _, d := range data {
		color := chart.GetDefaultColor(secondaryIndex[d.Secondary])
		bars = append(bars, chart.Value{
			Value: float64(d.Orders),
			Label: fmt.Sprintf("%s / %s", d.Primary, d.Secondary),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	title := "Orders by Category and Region"
	if groupBy == "region" {
		title = "Orders by Region and Category"
	}

	return chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   42,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
}

func dollarFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("$%.0f", f)
	}
	return fmt.Sprint(v)
}

func dimensionTitle(dimension string) string {
	words := strings.Split(dimension, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
