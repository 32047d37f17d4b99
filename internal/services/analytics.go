package services

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TurkiDlk/swiftShop-sales-dashboard/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v1"

	unknownValue  = "Unknown"
	ratingMissing = -1
)

// The CSV must carry these columns; position does not matter, the header
// names do.
var requiredColumns = []string{
	"order_id", "order_date", "product_name", "category", "quantity",
	"unit_price", "total_amount", "payment_method", "customer_region",
	"customer_rating",
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// Snapshot is the result of one CSV load: the cleaned orders in file order
// plus everything precomputed from them. It is immutable once published.
type Snapshot struct {
	Orders         []models.Order
	Overview       models.Overview
	Categories     []string
	Regions        []string
	PaymentMethods []string
	RecordCount    int64
	SkippedRows    int64
	LastModified   time.Time
}

type Analytics struct {
	mu            sync.RWMutex
	snap          *Snapshot
	csvPath       string
	cacheDir      string
	rowsProcessed atomic.Int64
	logger        *slog.Logger
}

func NewAnalytics() *Analytics {
	logger := slog.Default()
	return &Analytics{
		snap:   &Snapshot{},
		logger: logger,
	}
}

// EnableWarmCache makes LoadFromCSV keep a gob copy of the parsed dataset in
// dir and reuse it on restart while the CSV file is unchanged. Off unless
// called.
func (a *Analytics) EnableWarmCache(dir string) {
	a.cacheDir = dir
}

// SetOrders replaces the dataset directly. Used by tests.
func (a *Analytics) SetOrders(orders []models.Order) {
	snap := buildSnapshot(orders, 0)

	a.mu.Lock()
	a.snap = snap
	a.mu.Unlock()

	a.rowsProcessed.Store(snap.RecordCount)
}

func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	a.csvPath = filename

	// Check if we have a valid cache
	if cached, err := a.loadFromCache(filename); err == nil {
		fileInfo, err := os.Stat(filename)
		if err == nil && fileInfo.ModTime().Before(cached.LastModified) {
			a.mu.Lock()
			a.snap = cached
			a.mu.Unlock()
			a.rowsProcessed.Store(cached.RecordCount)
			a.logger.Info("loaded from cache", "records", cached.RecordCount)
			return nil
		}
	}

	start := time.Now()
	a.logger.Info("processing CSV file", "filename", filename)

	if err := a.processCSV(ctx, filename); err != nil {
		return fmt.Errorf("process csv: %w", err)
	}

	if err := a.saveToCache(filename); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	count := a.rowsProcessed.Load()
	a.logger.Info("csv processing complete",
		"records", count,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return nil
}

func (a *Analytics) processCSV(ctx context.Context, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return err
	}

	var (
		orders  []models.Order
		skipped int64
	)

	// Process in batches
	batch := make([][]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		parsed, bad, err := a.parseBatch(ctx, batch, cols)
		if err != nil {
			return err
		}
		orders = append(orders, parsed...)
		skipped += bad
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Structurally broken row (quoting, field count). Skip it like
			// a row whose values fail to parse.
			skipped++
			continue
		}

		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if len(orders) == 0 {
		return fmt.Errorf("no valid records found")
	}

	fillMissingRatings(orders)
	snap := buildSnapshot(orders, skipped)

	a.mu.Lock()
	a.snap = snap
	a.mu.Unlock()

	a.rowsProcessed.Store(snap.RecordCount)
	if skipped > 0 {
		a.logger.Warn("skipped malformed rows", "rows", skipped)
	}
	return nil
}

// parseBatch parses one batch of raw rows on a bounded worker pool. Results
// are written by index so the CSV's row order survives the concurrency.
func (a *Analytics) parseBatch(ctx context.Context, batch [][]string, cols columnIndex) ([]models.Order, int64, error) {
	parsed := make([]models.Order, len(batch))
	valid := make([]bool, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, row := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			order, err := parseOrder(row, cols)
			if err != nil {
				return nil // Skip invalid records
			}
			parsed[i] = order
			valid[i] = true
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, 0, err
	}

	kept := make([]models.Order, 0, len(batch))
	var skipped int64
	for i := range parsed {
		if valid[i] {
			kept = append(kept, parsed[i])
		} else {
			skipped++
		}
	}
	return kept, skipped, nil
}

type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

func parseOrder(row []string, cols columnIndex) (models.Order, error) {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	orderID := field("order_id")
	if orderID == "" {
		return models.Order{}, fmt.Errorf("empty order_id")
	}

	rawDate := field("order_date")
	orderDate, err := parseOrderDate(rawDate)
	if err != nil {
		return models.Order{}, err
	}

	quantity, err := strconv.Atoi(field("quantity"))
	if err != nil {
		return models.Order{}, fmt.Errorf("quantity: %w", err)
	}

	unitPrice, err := strconv.ParseFloat(field("unit_price"), 64)
	if err != nil {
		return models.Order{}, fmt.Errorf("unit_price: %w", err)
	}

	totalAmount, err := strconv.ParseFloat(field("total_amount"), 64)
	if err != nil {
		return models.Order{}, fmt.Errorf("total_amount: %w", err)
	}

	payment := field("payment_method")
	if payment == "" {
		payment = unknownValue
	}
	region := field("customer_region")
	if region == "" {
		region = unknownValue
	}

	rating := float64(ratingMissing)
	if ratingStr := field("customer_rating"); ratingStr != "" {
		rating, err = strconv.ParseFloat(ratingStr, 64)
		if err != nil {
			return models.Order{}, fmt.Errorf("customer_rating: %w", err)
		}
	}

	return models.Order{
		OrderID:        orderID,
		OrderDate:      orderDate,
		RawDate:        rawDate,
		ProductName:    field("product_name"),
		Category:       field("category"),
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		TotalAmount:    totalAmount,
		PaymentMethod:  payment,
		CustomerRegion: region,
		CustomerRating: rating,
	}, nil
}

func parseOrderDate(raw string) (time.Time, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized order_date %q", raw)
}

// fillMissingRatings replaces absent customer ratings with the dataset mean
// rounded to the nearest whole star. Region and payment method fills happen
// at parse time; the rating fill needs the whole file first.
func fillMissingRatings(orders []models.Order) {
	var sum float64
	var n int
	for _, o := range orders {
		if o.CustomerRating != ratingMissing {
			sum += o.CustomerRating
			n++
		}
	}

	fill := 0.0
	if n > 0 {
		fill = math.Round(sum / float64(n))
	}
	for i := range orders {
		if orders[i].CustomerRating == ratingMissing {
			orders[i].CustomerRating = fill
		}
	}
}

func buildSnapshot(orders []models.Order, skipped int64) *Snapshot {
	return &Snapshot{
		Orders:         orders,
		Overview:       computeOverview(orders),
		Categories:     uniqueValues(orders, func(o models.Order) string { return o.Category }),
		Regions:        uniqueValues(orders, func(o models.Order) string { return o.CustomerRegion }),
		PaymentMethods: uniqueValues(orders, func(o models.Order) string { return o.PaymentMethod }),
		RecordCount:    int64(len(orders)),
		SkippedRows:    skipped,
		LastModified:   time.Now(),
	}
}

func computeOverview(orders []models.Order) models.Overview {
	if len(orders) == 0 {
		return models.Overview{}
	}

	var totalSum float64
	productQty := make(map[string]int)
	catSum := make(map[string]float64)
	catCount := make(map[string]int)
	yearSet := make(map[int]bool)

	first := orders[0].OrderDate
	last := orders[0].OrderDate

	for _, o := range orders {
		totalSum += o.TotalAmount
		productQty[o.ProductName] += o.Quantity
		catSum[o.Category] += o.CustomerRating
		catCount[o.Category]++
		yearSet[o.Year()] = true

		if o.OrderDate.Before(first) {
			first = o.OrderDate
		}
		if o.OrderDate.After(last) {
			last = o.OrderDate
		}
	}

	topProduct := ""
	topQty := 0
	for name, qty := range productQty {
		if qty > topQty || (qty == topQty && (topProduct == "" || name < topProduct)) {
			topProduct = name
			topQty = qty
		}
	}

	ratings := make([]models.CategoryRating, 0, len(catSum))
	for cat, sum := range catSum {
		ratings = append(ratings, models.CategoryRating{
			Category:  cat,
			AvgRating: roundTo(sum/float64(catCount[cat]), 1),
		})
	}
	slices.SortFunc(ratings, func(a, b models.CategoryRating) int {
		if a.AvgRating > b.AvgRating {
			return -1
		}
		if a.AvgRating < b.AvgRating {
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	slices.Sort(years)

	return models.Overview{
		AvgOrderValue:    roundTo(totalSum/float64(len(orders)), 2),
		MostSoldProduct:  topProduct,
		MostSoldQuantity: topQty,
		CategoryRatings:  ratings,
		FirstOrderDate:   first.Format("2006-01-02"),
		LastOrderDate:    last.Format("2006-01-02"),
		Years:            years,
	}
}

func uniqueValues(orders []models.Order, key func(models.Order) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range orders {
		v := key(o)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// Cache management, active only when a cache dir was configured.
func (a *Analytics) cacheFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", a.cacheDir, strings.ReplaceAll(csvPath, "/", "_"), cacheVersion)
}

func (a *Analytics) saveToCache(csvPath string) error {
	if a.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(a.cacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()

	encoder := gob.NewEncoder(file)
	return encoder.Encode(a.snap)
}

func (a *Analytics) loadFromCache(csvPath string) (*Snapshot, error) {
	if a.cacheDir == "" {
		return nil, os.ErrNotExist
	}

	file, err := os.Open(a.cacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap Snapshot
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// Overview returns the precomputed dashboard KPIs.
func (a *Analytics) Overview() models.Overview {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Overview
}

// Categories lists the distinct product categories in file order.
func (a *Analytics) Categories() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Categories
}

// Regions lists the distinct customer regions in file order.
func (a *Analytics) Regions() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Regions
}

// Years lists the calendar years present in the dataset, ascending.
func (a *Analytics) Years() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Overview.Years
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"record_count":    a.snap.RecordCount,
		"skipped_rows":    a.snap.SkippedRows,
		"last_loaded":     a.snap.LastModified,
		"categories":      len(a.snap.Categories),
		"regions":         len(a.snap.Regions),
		"payment_methods": len(a.snap.PaymentMethods),
		"years":           len(a.snap.Overview.Years),
	}
}
