package models

import "time"

// Order is one row of the sales CSV. RawDate keeps the date exactly as it
// appeared in the file so the table and CSV export show the source format.
type Order struct {
	OrderID        string    `json:"order_id"`
	OrderDate      time.Time `json:"-"`
	RawDate        string    `json:"order_date"`
	ProductName    string    `json:"product_name"`
	Category       string    `json:"category"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	TotalAmount    float64   `json:"total_amount"`
	PaymentMethod  string    `json:"payment_method"`
	CustomerRegion string    `json:"customer_region"`
	CustomerRating float64   `json:"customer_rating"`
}

// Year returns the calendar year of the order date.
func (o Order) Year() int { return o.OrderDate.Year() }

// MonthlySales is the total sales amount for one month of a selected year.
type MonthlySales struct {
	Month    string  `json:"month"`
	MonthNum int     `json:"month_num"`
	Total    float64 `json:"total"`
}

// DimensionTotal is the summed sales amount for one value of a grouping
// dimension (region, category or payment method).
type DimensionTotal struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// RatingSummary is the mean customer rating for one value of a grouping
// dimension, with the number of orders behind it.
type RatingSummary struct {
	Label     string  `json:"label"`
	AvgRating float64 `json:"avg_rating"`
	Orders    int     `json:"orders"`
}

// MonthYearOrders is the distinct order count for one month name in one year.
// Years with no orders for a requested month still appear with a zero count.
type MonthYearOrders struct {
	Month  string `json:"month"`
	Year   int    `json:"year"`
	Orders int    `json:"orders"`
}

// GroupedOrders is the distinct order count for one (primary, secondary)
// grouping pair of the category/region breakdown.
type GroupedOrders struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Orders    int    `json:"orders"`
}

// CategoryRating is the mean customer rating for one product category.
type CategoryRating struct {
	Category  string  `json:"category"`
	AvgRating float64 `json:"avg_rating"`
}

// Overview holds the dashboard KPIs plus the dataset bounds the layout needs
// to build its controls.
type Overview struct {
	AvgOrderValue    float64          `json:"avg_order_value"`
	MostSoldProduct  string           `json:"most_sold_product"`
	MostSoldQuantity int              `json:"most_sold_quantity"`
	CategoryRatings  []CategoryRating `json:"category_ratings"`
	FirstOrderDate   string           `json:"first_order_date"`
	LastOrderDate    string           `json:"last_order_date"`
	Years            []int            `json:"years"`
}
