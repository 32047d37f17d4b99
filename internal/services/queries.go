package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/models"
)

// Validation errors returned by the query methods. Handlers translate them
// into 400 responses; everything else is a server fault.
var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrUnknownMonth     = errors.New("unknown month")
	ErrUnknownGroupMode = errors.New("unknown group mode")
	ErrEmptySelection   = errors.New("empty selection")
)

// IsValidationError reports whether err is a caller mistake rather than a
// server fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnknownDimension) ||
		errors.Is(err, ErrUnknownMonth) ||
		errors.Is(err, ErrUnknownGroupMode) ||
		errors.Is(err, ErrEmptySelection)
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthNames lists the twelve month names the month filters accept.
func MonthNames() []string {
	return slices.Clone(monthNames)
}

func monthNumber(name string) (int, bool) {
	for i, m := range monthNames {
		if m == name {
			return i + 1, true
		}
	}
	return 0, false
}

var shareDimensions = map[string]func(models.Order) string{
	"customer_region": func(o models.Order) string { return o.CustomerRegion },
	"category":        func(o models.Order) string { return o.Category },
	"payment_method":  func(o models.Order) string { return o.PaymentMethod },
}

var ratingDimensions = map[string]func(models.Order) string{
	"product_name":    func(o models.Order) string { return o.ProductName },
	"category":        func(o models.Order) string { return o.Category },
	"customer_region": func(o models.Order) string { return o.CustomerRegion },
}

// FilterOrders returns the orders whose date falls inside the inclusive
// [from, to] range, in file order. A nil bound leaves that side open.
func (a *Analytics) FilterOrders(from, to *time.Time) []models.Order {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.Order, 0, len(a.snap.Orders))
	for _, o := range a.snap.Orders {
		if from != nil && o.OrderDate.Before(*from) {
			continue
		}
		if to != nil && o.OrderDate.After(*to) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// OrdersPage slices one page out of the filtered orders. Pages are
// zero-based; the second result is the total filtered count.
func (a *Analytics) OrdersPage(from, to *time.Time, page, pageSize int) ([]models.Order, int) {
	filtered := a.FilterOrders(from, to)
	total := len(filtered)

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}

	start := page * pageSize
	if start >= total {
		return []models.Order{}, total
	}
	end := min(start+pageSize, total)
	return filtered[start:end], total
}

// DefaultPageSize matches the order table's page length.
const DefaultPageSize = 100

// MonthlySales sums total_amount per month of the given year. Only months
// with at least one order appear; the result is chronological.
func (a *Analytics) MonthlySales(year int) []models.MonthlySales {
	a.mu.RLock()
	defer a.mu.RUnlock()

	totals := make(map[int]float64)
	for _, o := range a.snap.Orders {
		if o.Year() == year {
			totals[int(o.OrderDate.Month())] += o.TotalAmount
		}
	}

	result := make([]models.MonthlySales, 0, len(totals))
	for num, total := range totals {
		result = append(result, models.MonthlySales{
			Month:    monthNames[num-1],
			MonthNum: num,
			Total:    total,
		})
	}
	slices.SortFunc(result, func(a, b models.MonthlySales) int {
		return a.MonthNum - b.MonthNum
	})
	return result
}

// SalesShare sums total_amount per value of the chosen dimension, largest
// share first. Valid dimensions: customer_region, category, payment_method.
func (a *Analytics) SalesShare(dimension string) ([]models.DimensionTotal, error) {
	key, ok := shareDimensions[dimension]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dimension)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	totals := make(map[string]float64)
	for _, o := range a.snap.Orders {
		totals[key(o)] += o.TotalAmount
	}

	result := make([]models.DimensionTotal, 0, len(totals))
	for label, total := range totals {
		result = append(result, models.DimensionTotal{Label: label, Total: total})
	}
	slices.SortFunc(result, func(a, b models.DimensionTotal) int {
		if a.Total > b.Total {
			return -1
		}
		if a.Total < b.Total {
			return 1
		}
		return strings.Compare(a.Label, b.Label)
	})
	return result, nil
}

// AverageRatings averages customer_rating per value of the chosen dimension,
// rounded to two decimals, best rated first. Valid dimensions: product_name,
// category, customer_region.
func (a *Analytics) AverageRatings(dimension string) ([]models.RatingSummary, error) {
	key, ok := ratingDimensions[dimension]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dimension)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, o := range a.snap.Orders {
		sums[key(o)] += o.CustomerRating
		counts[key(o)]++
	}

	result := make([]models.RatingSummary, 0, len(sums))
	for label, sum := range sums {
		result = append(result, models.RatingSummary{
			Label:     label,
			AvgRating: roundTo(sum/float64(counts[label]), 2),
			Orders:    counts[label],
		})
	}
	slices.SortFunc(result, func(a, b models.RatingSummary) int {
		if a.AvgRating > b.AvgRating {
			return -1
		}
		if a.AvgRating < b.AvgRating {
			return 1
		}
		return strings.Compare(a.Label, b.Label)
	})
	return result, nil
}

// MonthlyOrderCounts counts distinct orders per (year, month) for the chosen
// month names across every year in the dataset. Months without orders show a
// zero so year-over-year bars stay aligned. Sorted by year, then calendar
// month.
func (a *Analytics) MonthlyOrderCounts(months []string) ([]models.MonthYearOrders, error) {
	if len(months) == 0 {
		return nil, ErrEmptySelection
	}

	nums := make([]int, 0, len(months))
	seen := make(map[int]bool)
	for _, m := range months {
		num, ok := monthNumber(m)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMonth, m)
		}
		if !seen[num] {
			seen[num] = true
			nums = append(nums, num)
		}
	}
	slices.Sort(nums)

	a.mu.RLock()
	defer a.mu.RUnlock()

	type ym struct {
		year  int
		month int
	}
	distinct := make(map[ym]map[string]bool)
	for _, o := range a.snap.Orders {
		month := int(o.OrderDate.Month())
		if !seen[month] {
			continue
		}
		k := ym{o.Year(), month}
		if distinct[k] == nil {
			distinct[k] = make(map[string]bool)
		}
		distinct[k][o.OrderID] = true
	}

	result := make([]models.MonthYearOrders, 0, len(a.snap.Overview.Years)*len(nums))
	for _, year := range a.snap.Overview.Years {
		for _, num := range nums {
			result = append(result, models.MonthYearOrders{
				Month:  monthNames[num-1],
				Year:   year,
				Orders: len(distinct[ym{year, num}]),
			})
		}
	}
	return result, nil
}

// CategoryRegionOrders counts distinct orders for every combination of the
// selected categories and regions. groupBy picks the primary grouping,
// "category" or "region"; the other dimension becomes the secondary split.
// Groups are alphabetical on both levels.
func (a *Analytics) CategoryRegionOrders(categories, regions []string, groupBy string) ([]models.GroupedOrders, error) {
	if len(categories) == 0 || len(regions) == 0 {
		return nil, ErrEmptySelection
	}
	if groupBy != "category" && groupBy != "region" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroupMode, groupBy)
	}

	catSet := make(map[string]bool, len(categories))
	for _, c := range categories {
		catSet[c] = true
	}
	regionSet := make(map[string]bool, len(regions))
	for _, r := range regions {
		regionSet[r] = true
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	type pair struct {
		primary   string
		secondary string
	}
	distinct := make(map[pair]map[string]bool)
	for _, o := range a.snap.Orders {
		if !catSet[o.Category] || !regionSet[o.CustomerRegion] {
			continue
		}
		k := pair{o.Category, o.CustomerRegion}
		if groupBy == "region" {
			k = pair{o.CustomerRegion, o.Category}
		}
		if distinct[k] == nil {
			distinct[k] = make(map[string]bool)
		}
		distinct[k][o.OrderID] = true
	}

	result := make([]models.GroupedOrders, 0, len(distinct))
	for k, ids := range distinct {
		result = append(result, models.GroupedOrders{
			Primary:   k.primary,
			Secondary: k.secondary,
			Orders:    len(ids),
		})
	}
	slices.SortFunc(result, func(a, b models.GroupedOrders) int {
		if c := strings.Compare(a.Primary, b.Primary); c != 0 {
			return c
		}
		return strings.Compare(a.Secondary, b.Secondary)
	})
	return result, nil
}
