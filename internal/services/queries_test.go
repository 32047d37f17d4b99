package services

import (
	"errors"
	"testing"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/models"
	"github.com/google/go-cmp/cmp"
)

// sampleOrders is a small dataset with two years, a duplicate order_id
// (one order, two line rows) and an Unknown region/payment pair.
func sampleOrders() []models.Order {
	day := func(y, m, d int) time.Time {
		return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}
	return []models.Order{
		{OrderID: "O-1001", OrderDate: day(2024, 1, 5), RawDate: "2024-01-05", ProductName: "Laptop", Category: "Electronics", Quantity: 1, UnitPrice: 1200, TotalAmount: 1200, PaymentMethod: "Credit Card", CustomerRegion: "North", CustomerRating: 5},
		{OrderID: "O-1002", OrderDate: day(2024, 1, 20), RawDate: "2024-01-20", ProductName: "Mouse", Category: "Electronics", Quantity: 2, UnitPrice: 25, TotalAmount: 50, PaymentMethod: "PayPal", CustomerRegion: "South", CustomerRating: 4},
		{OrderID: "O-1003", OrderDate: day(2024, 2, 10), RawDate: "2024-02-10", ProductName: "Desk", Category: "Furniture", Quantity: 1, UnitPrice: 300, TotalAmount: 300, PaymentMethod: "Credit Card", CustomerRegion: "North", CustomerRating: 3},
		{OrderID: "O-1004", OrderDate: day(2024, 2, 14), RawDate: "2024-02-14", ProductName: "Chair", Category: "Furniture", Quantity: 4, UnitPrice: 75, TotalAmount: 300, PaymentMethod: "Debit Card", CustomerRegion: "East", CustomerRating: 4},
		{OrderID: "O-1005", OrderDate: day(2024, 3, 1), RawDate: "2024-03-01", ProductName: "Monitor", Category: "Electronics", Quantity: 2, UnitPrice: 150, TotalAmount: 300, PaymentMethod: "Credit Card", CustomerRegion: "West", CustomerRating: 2},
		{OrderID: "O-1006", OrderDate: day(2025, 1, 11), RawDate: "2025-01-11", ProductName: "Laptop", Category: "Electronics", Quantity: 1, UnitPrice: 1100, TotalAmount: 1100, PaymentMethod: "PayPal", CustomerRegion: "South", CustomerRating: 5},
		{OrderID: "O-1006", OrderDate: day(2025, 1, 11), RawDate: "2025-01-11", ProductName: "Mouse", Category: "Electronics", Quantity: 1, UnitPrice: 25, TotalAmount: 25, PaymentMethod: "PayPal", CustomerRegion: "South", CustomerRating: 5},
		{OrderID: "O-1007", OrderDate: day(2025, 2, 3), RawDate: "2025-02-03", ProductName: "Desk", Category: "Furniture", Quantity: 2, UnitPrice: 310, TotalAmount: 620, PaymentMethod: "Unknown", CustomerRegion: "Unknown", CustomerRating: 3},
	}
}

func newTestAnalytics(t *testing.T) *Analytics {
	t.Helper()
	a := NewAnalytics()
	a.SetOrders(sampleOrders())
	return a
}

func TestAnalytics_FilterOrders(t *testing.T) {
	a := newTestAnalytics(t)
	day := func(y, m, d int) time.Time {
		return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		from    *time.Time
		to      *time.Time
		wantIDs []string
	}{
		{
			name:    "no bounds",
			wantIDs: []string{"O-1001", "O-1002", "O-1003", "O-1004", "O-1005", "O-1006", "O-1006", "O-1007"},
		},
		{
			name:    "inclusive both ends",
			from:    ptr(day(2024, 2, 10)),
			to:      ptr(day(2024, 3, 1)),
			wantIDs: []string{"O-1003", "O-1004", "O-1005"},
		},
		{
			name:    "open start",
			to:      ptr(day(2024, 1, 31)),
			wantIDs: []string{"O-1001", "O-1002"},
		},
		{
			name:    "open end",
			from:    ptr(day(2025, 1, 1)),
			wantIDs: []string{"O-1006", "O-1006", "O-1007"},
		},
		{
			name:    "nothing in range",
			from:    ptr(day(2030, 1, 1)),
			to:      ptr(day(2030, 12, 31)),
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.FilterOrders(tt.from, tt.to)
			ids := make([]string, 0, len(got))
			for _, o := range got {
				ids = append(ids, o.OrderID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("FilterOrders() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestAnalytics_OrdersPage(t *testing.T) {
	a := newTestAnalytics(t)

	page, total := a.OrdersPage(nil, nil, 0, 3)
	if total != 8 {
		t.Errorf("total = %d, want 8", total)
	}
	if len(page) != 3 {
		t.Fatalf("page 0 = %d rows, want 3", len(page))
	}
	if page[0].OrderID != "O-1001" {
		t.Errorf("page 0 starts at %s, want O-1001", page[0].OrderID)
	}

	page, _ = a.OrdersPage(nil, nil, 2, 3)
	if len(page) != 2 {
		t.Fatalf("page 2 = %d rows, want the final 2", len(page))
	}
	if page[0].OrderID != "O-1006" {
		t.Errorf("page 2 starts at %s, want O-1006", page[0].OrderID)
	}

	page, total = a.OrdersPage(nil, nil, 5, 3)
	if len(page) != 0 || total != 8 {
		t.Errorf("page past the end = %d rows, total %d; want 0 rows, total 8", len(page), total)
	}

	// Non-positive page size falls back to the table default.
	page, _ = a.OrdersPage(nil, nil, 0, 0)
	if len(page) != 8 {
		t.Errorf("default page size should cover all 8 rows, got %d", len(page))
	}
}

func TestAnalytics_MonthlySales(t *testing.T) {
	a := newTestAnalytics(t)

	got := a.MonthlySales(2024)
	want := []models.MonthlySales{
		{Month: "January", MonthNum: 1, Total: 1250},
		{Month: "February", MonthNum: 2, Total: 600},
		{Month: "March", MonthNum: 3, Total: 300},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MonthlySales(2024) mismatch (-want +got):\n%s", diff)
	}

	got = a.MonthlySales(2025)
	want = []models.MonthlySales{
		{Month: "January", MonthNum: 1, Total: 1125},
		{Month: "February", MonthNum: 2, Total: 620},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MonthlySales(2025) mismatch (-want +got):\n%s", diff)
	}

	if got := a.MonthlySales(2030); len(got) != 0 {
		t.Errorf("MonthlySales(2030) = %v, want empty", got)
	}
}

func TestAnalytics_SalesShare(t *testing.T) {
	a := newTestAnalytics(t)

	got, err := a.SalesShare("payment_method")
	if err != nil {
		t.Fatalf("SalesShare() error: %v", err)
	}
	want := []models.DimensionTotal{
		{Label: "Credit Card", Total: 1800},
		{Label: "PayPal", Total: 1175},
		{Label: "Unknown", Total: 620},
		{Label: "Debit Card", Total: 300},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SalesShare(payment_method) mismatch (-want +got):\n%s", diff)
	}

	got, err = a.SalesShare("category")
	if err != nil {
		t.Fatalf("SalesShare() error: %v", err)
	}
	want = []models.DimensionTotal{
		{Label: "Electronics", Total: 2675},
		{Label: "Furniture", Total: 1220},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SalesShare(category) mismatch (-want +got):\n%s", diff)
	}

	if _, err := a.SalesShare("product_name"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("SalesShare(product_name) error = %v, want ErrUnknownDimension", err)
	}
}

func TestAnalytics_AverageRatings(t *testing.T) {
	a := newTestAnalytics(t)

	got, err := a.AverageRatings("customer_region")
	if err != nil {
		t.Fatalf("AverageRatings() error: %v", err)
	}
	want := []models.RatingSummary{
		{Label: "South", AvgRating: 4.67, Orders: 3},
		{Label: "East", AvgRating: 4, Orders: 1},
		{Label: "North", AvgRating: 4, Orders: 2},
		{Label: "Unknown", AvgRating: 3, Orders: 1},
		{Label: "West", AvgRating: 2, Orders: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AverageRatings(customer_region) mismatch (-want +got):\n%s", diff)
	}

	if _, err := a.AverageRatings("payment_method"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("AverageRatings(payment_method) error = %v, want ErrUnknownDimension", err)
	}
}

func TestAnalytics_MonthlyOrderCounts(t *testing.T) {
	a := newTestAnalytics(t)

	// Selection order does not matter; output is year then calendar month.
	got, err := a.MonthlyOrderCounts([]string{"February", "January"})
	if err != nil {
		t.Fatalf("MonthlyOrderCounts() error: %v", err)
	}
	want := []models.MonthYearOrders{
		{Month: "January", Year: 2024, Orders: 2},
		{Month: "February", Year: 2024, Orders: 2},
		{Month: "January", Year: 2025, Orders: 1},
		{Month: "February", Year: 2025, Orders: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MonthlyOrderCounts() mismatch (-want +got):\n%s", diff)
	}

	// O-1006 has two line rows in January 2025 but counts as one order.
	if got[2].Orders != 1 {
		t.Errorf("duplicate order_id counted twice: %+v", got[2])
	}

	// Years with no orders for the month still appear with a zero.
	got, err = a.MonthlyOrderCounts([]string{"March"})
	if err != nil {
		t.Fatalf("MonthlyOrderCounts() error: %v", err)
	}
	want = []models.MonthYearOrders{
		{Month: "March", Year: 2024, Orders: 1},
		{Month: "March", Year: 2025, Orders: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MonthlyOrderCounts(March) mismatch (-want +got):\n%s", diff)
	}

	if _, err := a.MonthlyOrderCounts(nil); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("empty months error = %v, want ErrEmptySelection", err)
	}
	if _, err := a.MonthlyOrderCounts([]string{"Janvier"}); !errors.Is(err, ErrUnknownMonth) {
		t.Errorf("bad month error = %v, want ErrUnknownMonth", err)
	}
}

func TestAnalytics_CategoryRegionOrders(t *testing.T) {
	a := newTestAnalytics(t)

	got, err := a.CategoryRegionOrders(
		[]string{"Electronics", "Furniture"},
		[]string{"North", "South"},
		"category")
	if err != nil {
		t.Fatalf("CategoryRegionOrders() error: %v", err)
	}
	want := []models.GroupedOrders{
		{Primary: "Electronics", Secondary: "North", Orders: 1},
		{Primary: "Electronics", Secondary: "South", Orders: 2},
		{Primary: "Furniture", Secondary: "North", Orders: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("group by category mismatch (-want +got):\n%s", diff)
	}

	got, err = a.CategoryRegionOrders(
		[]string{"Electronics", "Furniture"},
		[]string{"North", "South"},
		"region")
	if err != nil {
		t.Fatalf("CategoryRegionOrders() error: %v", err)
	}
	want = []models.GroupedOrders{
		{Primary: "North", Secondary: "Electronics", Orders: 1},
		{Primary: "North", Secondary: "Furniture", Orders: 1},
		{Primary: "South", Secondary: "Electronics", Orders: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("group by region mismatch (-want +got):\n%s", diff)
	}

	if _, err := a.CategoryRegionOrders(nil, []string{"North"}, "category"); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("empty categories error = %v, want ErrEmptySelection", err)
	}
	if _, err := a.CategoryRegionOrders([]string{"Electronics"}, nil, "category"); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("empty regions error = %v, want ErrEmptySelection", err)
	}
	if _, err := a.CategoryRegionOrders([]string{"Electronics"}, []string{"North"}, "product"); !errors.Is(err, ErrUnknownGroupMode) {
		t.Errorf("bad mode error = %v, want ErrUnknownGroupMode", err)
	}
}
