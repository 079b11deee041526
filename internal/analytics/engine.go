// Package analytics computes window-scoped metrics over the order history:
// overview totals, daily sales trends, and top product rankings.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trendmart/dashboard-api/internal/order"
)

var ErrInvalidLimit = errors.New("invalid limit")

// OrderSource yields orders (joined with product name/category) whose
// order_date falls in the half-open range [from, to).
type OrderSource interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]order.Order, error)
}

type Engine struct {
	orders OrderSource
}

func NewEngine(orders OrderSource) *Engine {
	return &Engine{orders: orders}
}

type Overview struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalOrders       int     `json:"total_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
	Period            string  `json:"period"`
}

type TrendPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type Trends struct {
	Data   []TrendPoint `json:"data"`
	Period string       `json:"period"`
}

type TopProduct struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	TotalRevenue float64 `json:"total_revenue"`
	UnitsSold    int     `json:"units_sold"`
	GrowthRate   float64 `json:"growth_rate"`
}

type TopProducts struct {
	Products []TopProduct `json:"products"`
	Period   string       `json:"period"`
}

func (e *Engine) OverviewMetrics(ctx context.Context, period string) (*Overview, error) {
	w, err := ResolvePeriod(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	orders, err := e.orders.ListBetween(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("overview metrics: %w", err)
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
	}
	avg := decimal.Zero
	if len(orders) > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(len(orders))))
	}

	return &Overview{
		TotalRevenue:      revenue.InexactFloat64(),
		TotalOrders:       len(orders),
		AverageOrderValue: avg.InexactFloat64(),
		Period:            period,
	}, nil
}

// SalesTrends buckets orders by UTC calendar day. Days without orders are not
// synthesized; the series is sorted ascending by date.
func (e *Engine) SalesTrends(ctx context.Context, period string) (*Trends, error) {
	w, err := ResolvePeriod(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	orders, err := e.orders.ListBetween(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("sales trends: %w", err)
	}

	type dayAgg struct {
		revenue decimal.Decimal
		orders  int
	}
	days := make(map[string]*dayAgg)
	for _, o := range orders {
		key := o.OrderDate.UTC().Format("2006-01-02")
		agg, ok := days[key]
		if !ok {
			agg = &dayAgg{}
			days[key] = agg
		}
		agg.revenue = agg.revenue.Add(o.TotalAmount)
		agg.orders++
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		data = append(data, TrendPoint{
			Date:    k,
			Revenue: days[k].revenue.InexactFloat64(),
			Orders:  days[k].orders,
		})
	}

	return &Trends{Data: data, Period: period}, nil
}

// TopProducts ranks products by revenue within the window, descending, ties
// kept in order of first appearance. Growth rate compares against the
// immediately preceding window of equal length.
func (e *Engine) TopProducts(ctx context.Context, period string, limit int) (*TopProducts, error) {
	if limit < 1 || limit > 50 {
		return nil, ErrInvalidLimit
	}
	w, err := ResolvePeriod(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	current, err := e.orders.ListBetween(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	prev := w.Previous()
	previous, err := e.orders.ListBetween(ctx, prev.Start, prev.End)
	if err != nil {
		return nil, fmt.Errorf("top products (previous window): %w", err)
	}

	type productAgg struct {
		id       int64
		name     string
		category string
		revenue  decimal.Decimal
		units    int
	}
	byID := make(map[int64]*productAgg)
	aggs := make([]*productAgg, 0)
	for _, o := range current {
		agg, ok := byID[o.ProductID]
		if !ok {
			agg = &productAgg{id: o.ProductID, name: o.ProductName, category: o.Category}
			byID[o.ProductID] = agg
			aggs = append(aggs, agg)
		}
		agg.revenue = agg.revenue.Add(o.TotalAmount)
		agg.units += o.Quantity
	}

	prevRevenue := make(map[int64]decimal.Decimal)
	for _, o := range previous {
		prevRevenue[o.ProductID] = prevRevenue[o.ProductID].Add(o.TotalAmount)
	}

	sort.SliceStable(aggs, func(i, j int) bool {
		return aggs[i].revenue.Cmp(aggs[j].revenue) > 0
	})
	if len(aggs) > limit {
		aggs = aggs[:limit]
	}

	products := make([]TopProduct, 0, len(aggs))
	for _, agg := range aggs {
		products = append(products, TopProduct{
			ID:           agg.id,
			Name:         agg.name,
			Category:     agg.category,
			TotalRevenue: agg.revenue.InexactFloat64(),
			UnitsSold:    agg.units,
			GrowthRate:   growthRate(agg.revenue, prevRevenue[agg.id]),
		})
	}

	return &TopProducts{Products: products, Period: period}, nil
}

// growthRate is the period-over-period revenue change in percent, rounded to
// one decimal place. A product with no revenue in the previous window reports
// zero growth rather than a division by zero.
func growthRate(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	return current.Sub(previous).
		Div(previous).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		InexactFloat64()
}
