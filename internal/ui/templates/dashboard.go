package templates

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/models"
)

// DashboardView carries everything the page shell needs: the precomputed
// KPIs plus the option lists the filter controls are built from.
type DashboardView struct {
	Overview   models.Overview
	Years      []int
	Categories []string
	Regions    []string
	Months     []string
}

// SignalsJSON is the initial datastar signal state: every filter starts at
// the same defaults the charts assume server-side.
func (v DashboardView) SignalsJSON() string {
	year := ""
	if len(v.Years) > 0 {
		year = strconv.Itoa(v.Years[len(v.Years)-1])
	}

	payload := map[string]any{
		"tab":         "overview",
		"year":        year,
		"shareDim":    "customer_region",
		"ratingDim":   "product_name",
		"months":      []string{"January"},
		"categories":  v.Categories,
		"regions":     v.Regions,
		"groupBy":     "category",
		"fromDate":    v.Overview.FirstOrderDate,
		"toDate":      v.Overview.LastOrderDate,
		"page":        0,
		"ordersTotal": 0,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Dashboard renders the single-page dashboard shell. The charts and the
// order table arrive afterwards over SSE.
func Dashboard(view DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return dashboardTemplate.Execute(w, view)
	})
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>SwiftShop Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
:root { --ink: #1f2633; --muted: #66718a; --line: #dde3ee; --accent: #2a6fdb; --bg: #f4f6fb; }
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, -apple-system, "Segoe UI", sans-serif; background: var(--bg); color: var(--ink); }
.page { max-width: 1100px; margin: 0 auto; padding: 24px 20px 48px; }
header h1 { margin: 0; font-size: 1.7rem; }
header p { margin: 4px 0 0; color: var(--muted); }
.tabs { display: flex; gap: 8px; margin: 24px 0 16px; border-bottom: 2px solid var(--line); }
.tab-btn { border: 0; background: none; padding: 10px 18px; font-size: 1rem; color: var(--muted); cursor: pointer; border-bottom: 3px solid transparent; }
.tab-btn.active { color: var(--accent); border-bottom-color: var(--accent); font-weight: 600; }
.kpi-row { display: grid; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); gap: 14px; margin-bottom: 20px; }
.kpi-card { background: #fff; border: 1px solid var(--line); border-radius: 10px; padding: 16px 18px; }
.kpi-card h3 { margin: 0 0 6px; font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.04em; color: var(--muted); }
.kpi-value { font-size: 1.5rem; font-weight: 700; }
.kpi-sub { color: var(--muted); font-size: 0.85rem; }
.kpi-card ul { margin: 4px 0 0; padding-left: 18px; }
.panel { background: #fff; border: 1px solid var(--line); border-radius: 10px; padding: 18px; margin-bottom: 20px; }
.panel h2 { margin: 0 0 12px; font-size: 1.05rem; }
.controls { display: flex; flex-wrap: wrap; gap: 16px; align-items: center; margin-bottom: 12px; }
.controls label { font-size: 0.9rem; color: var(--muted); }
.controls select, .controls input[type="date"] { padding: 6px 8px; border: 1px solid var(--line); border-radius: 6px; font-size: 0.9rem; }
.controls select[multiple] { min-width: 180px; min-height: 88px; }
.radio-group { display: flex; gap: 12px; }
.chart-box { overflow-x: auto; }
.chart-box svg { max-width: 100%; height: auto; }
.chart-hint { color: var(--muted); padding: 32px 0; text-align: center; }
.chart-links { margin-top: 8px; font-size: 0.85rem; }
.chart-links a { color: var(--accent); text-decoration: none; }
.modern-table { width: 100%; border-collapse: collapse; font-size: 0.88rem; }
.modern-table th { text-align: left; padding: 8px 10px; border-bottom: 2px solid var(--line); color: var(--muted); white-space: nowrap; }
.modern-table td { padding: 7px 10px; border-bottom: 1px solid var(--line); }
.category-badge { background: #e8effc; color: var(--accent); border-radius: 12px; padding: 2px 9px; font-size: 0.8rem; }
.empty-row { text-align: center; color: var(--muted); padding: 24px 0; }
.table-footer { display: flex; align-items: center; gap: 14px; margin-top: 12px; }
.page-btn { border: 1px solid var(--line); background: #fff; border-radius: 6px; padding: 6px 14px; cursor: pointer; }
.page-btn:disabled { opacity: 0.45; cursor: default; }
.page-info { color: var(--muted); font-size: 0.88rem; }
.export-btn { display: inline-block; background: var(--accent); color: #fff; border-radius: 6px; padding: 8px 16px; text-decoration: none; font-size: 0.9rem; }
</style>
</head>
<body data-signals="{{.SignalsJSON}}" data-on-load="@get('/sse/refresh-all')">
<div class="page">
<header>
<h1>SwiftShop Sales Dashboard</h1>
<p>Sales performance, customer ratings and order history from the latest export</p>
</header>

<div class="tabs">
<button class="tab-btn" data-class-active="$tab == 'overview'" data-on-click="$tab = 'overview'">Sales Overview</button>
<button class="tab-btn" data-class-active="$tab == 'orders'" data-on-click="$tab = 'orders'">Orders</button>
</div>

<section data-show="$tab == 'overview'">
<div class="kpi-row">
<div class="kpi-card">
<h3>Average Order Value</h3>
<div class="kpi-value">${{printf "%.2f" .Overview.AvgOrderValue}}</div>
</div>
<div class="kpi-card">
<h3>Most Sold Product</h3>
<div class="kpi-value">{{.Overview.MostSoldProduct}}</div>
<div class="kpi-sub">{{.Overview.MostSoldQuantity}} units sold</div>
</div>
<div class="kpi-card">
<h3>Average Rating by Category</h3>
<ul>
{{range .Overview.CategoryRatings}}<li>{{.Category}}: {{printf "%.1f" .AvgRating}}</li>
{{end}}</ul>
</div>
</div>

<div class="panel">
<h2>Monthly Sales</h2>
<div class="controls">
<div class="radio-group">
{{range .Years}}<label><input type="radio" name="year" value="{{.}}" data-bind="year" data-on-change="@get('/sse/monthly-sales')"> {{.}}</label>
{{end}}</div>
</div>
<div id="monthly-sales-chart" class="chart-box"><p class="chart-hint">Loading chart</p></div>
<div class="chart-links"><a data-attr-href="'/charts/monthly-sales.png?year=' + $year" href="/charts/monthly-sales.png" download>Download PNG</a></div>
</div>

<div class="panel">
<h2>Sales Share</h2>
<div class="controls">
<label>Group by
<select data-bind="shareDim" data-on-change="@get('/sse/sales-share')">
<option value="customer_region">Customer Region</option>
<option value="category">Category</option>
<option value="payment_method">Payment Method</option>
</select>
</label>
</div>
<div id="sales-share-chart" class="chart-box"><p class="chart-hint">Loading chart</p></div>
<div class="chart-links"><a data-attr-href="'/charts/sales-share.png?dimension=' + $shareDim" href="/charts/sales-share.png" download>Download PNG</a></div>
</div>

<div class="panel">
<h2>Average Customer Ratings</h2>
<div class="controls">
<label>Group by
<select data-bind="ratingDim" data-on-change="@get('/sse/average-ratings')">
<option value="product_name">Product Name</option>
<option value="category">Category</option>
<option value="customer_region">Customer Region</option>
</select>
</label>
</div>
<div id="average-ratings-chart" class="chart-box"><p class="chart-hint">Loading chart</p></div>
<div class="chart-links"><a data-attr-href="'/charts/average-ratings.png?dimension=' + $ratingDim" href="/charts/average-ratings.png" download>Download PNG</a></div>
</div>

<div class="panel">
<h2>Orders by Month, Year over Year</h2>
<div class="controls">
<label>Months
<select multiple data-bind="months" data-on-change="@get('/sse/month-comparison')">
{{range .Months}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
</label>
</div>
<div id="month-comparison-chart" class="chart-box"><p class="chart-hint">Loading chart</p></div>
</div>

<div class="panel">
<h2>Orders by Category and Region</h2>
<div class="controls">
<label>Categories
<select multiple data-bind="categories" data-on-change="@get('/sse/category-region')">
{{range .Categories}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
</label>
<label>Regions
<select multiple data-bind="regions" data-on-change="@get('/sse/category-region')">
{{range .Regions}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
</label>
<div class="radio-group">
<label><input type="radio" name="groupBy" value="category" data-bind="groupBy" data-on-change="@get('/sse/category-region')"> Group by category</label>
<label><input type="radio" name="groupBy" value="region" data-bind="groupBy" data-on-change="@get('/sse/category-region')"> Group by region</label>
</div>
</div>
<div id="category-region-chart" class="chart-box"><p class="chart-hint">Loading chart</p></div>
</div>
</section>

<section data-show="$tab == 'orders'">
<div class="panel">
<h2>Order History</h2>
<div class="controls">
<label>From
<input type="date" data-bind="fromDate" min="{{.Overview.FirstOrderDate}}" max="{{.Overview.LastOrderDate}}" data-on-change="$page = 0; @get('/sse/orders-table')">
</label>
<label>To
<input type="date" data-bind="toDate" min="{{.Overview.FirstOrderDate}}" max="{{.Overview.LastOrderDate}}" data-on-change="$page = 0; @get('/sse/orders-table')">
</label>
<a class="export-btn" data-attr-href="'/export/orders.csv?from=' + $fromDate + '&to=' + $toDate" href="/export/orders.csv" download>Export CSV</a>
</div>
<div id="orders-table"><p class="chart-hint">Loading orders</p></div>
</div>
</section>
</div>
</body>
</html>`))
