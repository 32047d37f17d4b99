package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/models"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/server"
	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/services"
)

// Test helper to create analytics with test data
func newTestAnalytics() *services.Analytics {
	a := services.NewAnalytics()
	testData := []models.Order{
		{
			OrderID:        "SS-1001",
			OrderDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			RawDate:        "2024-01-15",
			ProductName:    "Laptop",
			Category:       "Electronics",
			Quantity:       1,
			UnitPrice:      999.99,
			TotalAmount:    999.99,
			PaymentMethod:  "Credit Card",
			CustomerRegion: "North",
			CustomerRating: 5,
		},
		{
			OrderID:        "SS-1002",
			OrderDate:      time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			RawDate:        "2024-02-10",
			ProductName:    "Mouse",
			Category:       "Electronics",
			Quantity:       2,
			UnitPrice:      29.99,
			TotalAmount:    59.98,
			PaymentMethod:  "PayPal",
			CustomerRegion: "South",
			CustomerRating: 4,
		},
		{
			OrderID:        "SS-1003",
			OrderDate:      time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			RawDate:        "2025-01-05",
			ProductName:    "Desk",
			Category:       "Furniture",
			Quantity:       1,
			UnitPrice:      349.50,
			TotalAmount:    349.50,
			PaymentMethod:  "Debit Card",
			CustomerRegion: "East",
			CustomerRating: 3,
		},
	}
	a.SetOrders(testData)
	return a
}

func newTestServer() *server.Server {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	analytics := newTestAnalytics()
	templateHandlers := &server.TemplateHandlers{Dashboard: newDashboardHandler(analytics)}
	return server.NewServer(analytics, logger, templateHandlers)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/overview", http.StatusOK, "application/json"},
		{"/api/orders", http.StatusOK, "application/json"},
		{"/api/monthly-sales", http.StatusOK, "application/json"},
		{"/api/sales-share", http.StatusOK, "application/json"},
		{"/api/average-ratings", http.StatusOK, "application/json"},
		{"/api/month-comparison", http.StatusOK, "application/json"},
		{"/api/category-region", http.StatusOK, "application/json"},
		{"/export/orders.csv", http.StatusOK, "text/csv"},
		{"/charts/monthly-sales.png", http.StatusOK, "image/png"},
		{"/charts/sales-share.png", http.StatusOK, "image/png"},
		{"/charts/average-ratings.png", http.StatusOK, "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test JSON API responses
func TestServer_JSONResponse(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/sales-share?dimension=category", nil)
	srv.ServeHTTP(w, r)

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object in response")
	}

	if dim, ok := data["dimension"].(string); !ok || dim != "category" {
		t.Errorf("dimension = %v, want 'category'", data["dimension"])
	}

	shares, ok := data["shares"].([]interface{})
	if !ok || len(shares) == 0 {
		t.Fatalf("expected non-empty shares array")
	}

	// Verify structure of first item
	if item, ok := shares[0].(map[string]interface{}); ok {
		if label, hasLabel := item["label"].(string); !hasLabel || label == "" {
			t.Error("share should have non-empty label field")
		}
		if total, hasTotal := item["total"].(float64); !hasTotal || total <= 0 {
			t.Error("share should have positive total field")
		}
	} else {
		t.Error("invalid share structure")
	}
}

// Test Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer()

	sseRoutes := []string{
		"/sse/orders-table",
		"/sse/monthly-sales",
		"/sse/sales-share",
		"/sse/average-ratings",
		"/sse/month-comparison",
		"/sse/category-region",
		"/sse/refresh-all",
	}

	for _, route := range sseRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			// Check for SSE headers
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

// Test health endpoint
func TestServer_HandleHealth(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode health JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	healthData, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected health data in response")
	}

	if status, ok := healthData["status"].(string); !ok || status != "healthy" {
		t.Errorf("health status = %v, want 'healthy'", healthData["status"])
	}

	if _, ok := healthData["timestamp"]; !ok {
		t.Error("health response should include timestamp")
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/overview", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/export/orders.csv", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	handler := newDashboardHandler(newTestAnalytics())
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "SwiftShop Sales Dashboard") {
		t.Error("dashboard should contain title")
	}

	if !strings.Contains(body, "Sales performance, customer ratings and order history") {
		t.Error("dashboard should contain subtitle")
	}

	// Check for key dashboard components
	expectedComponents := []string{
		"Average Order Value",
		"Most Sold Product",
		"Monthly Sales",
		"Sales Share",
		"Average Customer Ratings",
		"Orders by Month, Year over Year",
		"Orders by Category and Region",
		"Order History",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}

	// Filter controls are built from the loaded dataset
	for _, option := range []string{"2024", "2025", "Electronics", "Furniture"} {
		if !strings.Contains(body, option) {
			t.Errorf("dashboard should offer '%s' as a filter option", option)
		}
	}
}
