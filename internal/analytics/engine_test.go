package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendmart/dashboard-api/internal/order"
)

// stubSource serves orders from memory, honoring the half-open range the
// engine asks for, and records every window it was queried with.
type stubSource struct {
	orders []order.Order
	err    error
	calls  []Window
}

func (s *stubSource) ListBetween(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	s.calls = append(s.calls, Window{Start: from, End: to})
	if s.err != nil {
		return nil, s.err
	}
	var out []order.Order
	for _, o := range s.orders {
		if !o.OrderDate.Before(from) && o.OrderDate.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func amt(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestOverviewMetrics(t *testing.T) {
	// today / 3 days ago / 7 days ago: the oldest order predates the window
	// start that the engine resolves at call time, so it must be excluded
	now := time.Now().UTC()
	src := &stubSource{orders: []order.Order{
		{ID: 1, ProductID: 1, ProductName: "Wireless Headphones", Category: "Electronics", Quantity: 2, TotalAmount: amt(399.98), OrderDate: now},
		{ID: 2, ProductID: 2, ProductName: "Smart Watch", Category: "Electronics", Quantity: 1, TotalAmount: amt(299.99), OrderDate: now.AddDate(0, 0, -3)},
		{ID: 3, ProductID: 3, ProductName: "Running Shoes", Category: "Sports", Quantity: 3, TotalAmount: amt(269.97), OrderDate: now.AddDate(0, 0, -7)},
	}}
	engine := NewEngine(src)

	got, err := engine.OverviewMetrics(context.Background(), "7d")
	require.NoError(t, err)

	assert.Equal(t, 699.97, got.TotalRevenue)
	assert.Equal(t, 2, got.TotalOrders)
	assert.InDelta(t, 349.985, got.AverageOrderValue, 1e-9)
	assert.Equal(t, "7d", got.Period)
	assert.InDelta(t, got.TotalRevenue, got.AverageOrderValue*float64(got.TotalOrders), 1e-9)
}

func TestOverviewMetricsEmptyWindow(t *testing.T) {
	engine := NewEngine(&stubSource{})

	got, err := engine.OverviewMetrics(context.Background(), "30d")
	require.NoError(t, err)

	assert.Zero(t, got.TotalRevenue)
	assert.Zero(t, got.TotalOrders)
	assert.Zero(t, got.AverageOrderValue, "average is defined as zero, not an error")
}

func TestOverviewMetricsInvalidPeriod(t *testing.T) {
	engine := NewEngine(&stubSource{})
	_, err := engine.OverviewMetrics(context.Background(), "14d")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestOverviewMetricsStoreFailure(t *testing.T) {
	engine := NewEngine(&stubSource{err: errors.New("connection reset")})
	_, err := engine.OverviewMetrics(context.Background(), "7d")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidPeriod)
}

func TestSalesTrends(t *testing.T) {
	now := time.Now().UTC()
	// noon-anchored so adding a couple of hours never crosses a UTC day
	day := func(daysAgo int) time.Time {
		d := now.AddDate(0, 0, -daysAgo)
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
	}
	src := &stubSource{orders: []order.Order{
		{ID: 1, TotalAmount: amt(100.10), OrderDate: day(1)},
		{ID: 2, TotalAmount: amt(50.25), OrderDate: day(1).Add(2 * time.Hour)},
		{ID: 3, TotalAmount: amt(75.00), OrderDate: day(4)},
	}}
	engine := NewEngine(src)

	trends, err := engine.SalesTrends(context.Background(), "7d")
	require.NoError(t, err)
	require.Len(t, trends.Data, 2, "days with no orders are not synthesized")

	assert.Equal(t, day(4).UTC().Format("2006-01-02"), trends.Data[0].Date)
	assert.Equal(t, day(1).UTC().Format("2006-01-02"), trends.Data[1].Date)
	assert.Less(t, trends.Data[0].Date, trends.Data[1].Date, "series sorted ascending by date")

	assert.Equal(t, 75.00, trends.Data[0].Revenue)
	assert.Equal(t, 1, trends.Data[0].Orders)
	assert.Equal(t, 150.35, trends.Data[1].Revenue)
	assert.Equal(t, 2, trends.Data[1].Orders)

	// trend revenue reconciles with the overview for the same window
	overview, err := engine.OverviewMetrics(context.Background(), "7d")
	require.NoError(t, err)
	var sum float64
	for _, p := range trends.Data {
		sum += p.Revenue
	}
	assert.InDelta(t, overview.TotalRevenue, sum, 1e-9)
}

func TestSalesTrendsRequiresPeriod(t *testing.T) {
	engine := NewEngine(&stubSource{})
	_, err := engine.SalesTrends(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestTopProductsRanking(t *testing.T) {
	now := time.Now().UTC()
	src := &stubSource{orders: []order.Order{
		{ID: 1, ProductID: 1, ProductName: "Wireless Headphones", Category: "Electronics", Quantity: 2, TotalAmount: amt(100), OrderDate: now.AddDate(0, 0, -1)},
		{ID: 2, ProductID: 1, ProductName: "Wireless Headphones", Category: "Electronics", Quantity: 1, TotalAmount: amt(100), OrderDate: now.AddDate(0, 0, -2)},
		{ID: 3, ProductID: 2, ProductName: "Smart Watch", Category: "Electronics", Quantity: 1, TotalAmount: amt(150), OrderDate: now.AddDate(0, 0, -2)},
		{ID: 4, ProductID: 3, ProductName: "Running Shoes", Category: "Sports", Quantity: 4, TotalAmount: amt(80), OrderDate: now.AddDate(0, 0, -3)},
		// previous 30d window: product 1 had 100 in revenue
		{ID: 5, ProductID: 1, ProductName: "Wireless Headphones", Category: "Electronics", Quantity: 1, TotalAmount: amt(100), OrderDate: now.AddDate(0, 0, -40)},
	}}
	engine := NewEngine(src)

	got, err := engine.TopProducts(context.Background(), "30d", 10)
	require.NoError(t, err)
	require.Len(t, got.Products, 3)

	first := got.Products[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Wireless Headphones", first.Name)
	assert.Equal(t, "Electronics", first.Category)
	assert.Equal(t, 200.0, first.TotalRevenue)
	assert.Equal(t, 3, first.UnitsSold)
	assert.Equal(t, 100.0, first.GrowthRate, "200 vs 100 in the previous window")

	assert.Equal(t, int64(2), got.Products[1].ID)
	assert.Zero(t, got.Products[1].GrowthRate, "no previous-window revenue means zero growth")
	assert.Equal(t, int64(3), got.Products[2].ID)

	for i := 1; i < len(got.Products); i++ {
		assert.GreaterOrEqual(t, got.Products[i-1].TotalRevenue, got.Products[i].TotalRevenue,
			"revenue non-increasing down the ranking")
	}

	// both fetches derive from one evaluation of now
	require.Len(t, src.calls, 2)
	assert.Equal(t, src.calls[0].Start, src.calls[1].End, "previous window ends where the current one starts")
}

func TestTopProductsTieBreakIsFirstAppearance(t *testing.T) {
	now := time.Now().UTC()
	src := &stubSource{orders: []order.Order{
		{ID: 1, ProductID: 7, ProductName: "A", Category: "x", Quantity: 1, TotalAmount: amt(50), OrderDate: now.AddDate(0, 0, -1)},
		{ID: 2, ProductID: 9, ProductName: "B", Category: "x", Quantity: 1, TotalAmount: amt(50), OrderDate: now.AddDate(0, 0, -2)},
	}}
	engine := NewEngine(src)

	got, err := engine.TopProducts(context.Background(), "7d", 10)
	require.NoError(t, err)
	require.Len(t, got.Products, 2)
	assert.Equal(t, int64(7), got.Products[0].ID)
	assert.Equal(t, int64(9), got.Products[1].ID)
}

func TestTopProductsLimitTruncates(t *testing.T) {
	now := time.Now().UTC()
	var orders []order.Order
	for i := int64(1); i <= 5; i++ {
		orders = append(orders, order.Order{
			ID: i, ProductID: i, ProductName: "P", Category: "x",
			Quantity: 1, TotalAmount: amt(float64(i * 10)), OrderDate: now.AddDate(0, 0, -1),
		})
	}
	engine := NewEngine(&stubSource{orders: orders})

	got, err := engine.TopProducts(context.Background(), "7d", 2)
	require.NoError(t, err)
	require.Len(t, got.Products, 2)
	assert.Equal(t, 50.0, got.Products[0].TotalRevenue)
	assert.Equal(t, 40.0, got.Products[1].TotalRevenue)
}

func TestTopProductsLimitBounds(t *testing.T) {
	engine := NewEngine(&stubSource{})
	for _, limit := range []int{0, -1, 51, 100} {
		_, err := engine.TopProducts(context.Background(), "30d", limit)
		assert.ErrorIs(t, err, ErrInvalidLimit, "limit=%d", limit)
	}

	// bounds are inclusive
	for _, limit := range []int{1, 50} {
		_, err := engine.TopProducts(context.Background(), "30d", limit)
		assert.NoError(t, err, "limit=%d", limit)
	}
}

func TestGrowthRateRounding(t *testing.T) {
	// 50 -> 70 is +40%; 30 -> 40 rounds to +33.3%
	assert.Equal(t, 40.0, growthRate(amt(70), amt(50)))
	assert.Equal(t, 33.3, growthRate(amt(40), amt(30)))
	assert.Equal(t, -50.0, growthRate(amt(25), amt(50)))
	assert.Zero(t, growthRate(amt(10), decimal.Zero))
}
