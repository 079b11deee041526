package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/trendmart/dashboard-api/internal/analytics"
	"github.com/trendmart/dashboard-api/internal/httpx"
	"github.com/trendmart/dashboard-api/internal/listing"
	"github.com/trendmart/dashboard-api/internal/order"
	"github.com/trendmart/dashboard-api/internal/product"
)

const (
	defaultPeriod = "30d"
	defaultLimit  = 10
	maxLimit      = 100
)

var orderSchema = listing.Schema[order.Order]{
	SearchFields: []func(order.Order) string{
		func(o order.Order) string { return o.ProductName },
		func(o order.Order) string { return o.Status },
	},
	FilterFields: map[string]func(order.Order) string{
		"status": func(o order.Order) string { return o.Status },
	},
	SortFields: map[string]func(order.Order) any{
		"id":           func(o order.Order) any { return o.ID },
		"product_name": func(o order.Order) any { return o.ProductName },
		"category":     func(o order.Order) any { return o.Category },
		"quantity":     func(o order.Order) any { return o.Quantity },
		"total_amount": func(o order.Order) any { return o.TotalAmount },
		"status":       func(o order.Order) any { return o.Status },
		"order_date":   func(o order.Order) any { return o.OrderDate },
	},
}

var productSchema = listing.Schema[product.Product]{
	SearchFields: []func(product.Product) string{
		func(p product.Product) string { return p.Name },
		func(p product.Product) string { return p.Category },
	},
	FilterFields: map[string]func(product.Product) string{
		"category": func(p product.Product) string { return p.Category },
		"status":   func(p product.Product) string { return p.Status },
	},
	SortFields: map[string]func(product.Product) any{
		"id":         func(p product.Product) any { return p.ID },
		"name":       func(p product.Product) any { return p.Name },
		"category":   func(p product.Product) any { return p.Category },
		"price":      func(p product.Product) any { return p.Price },
		"stock":      func(p product.Product) any { return p.Stock },
		"status":     func(p product.Product) any { return p.Status },
		"created_at": func(p product.Product) any { return p.CreatedAt },
	},
}

func newRouter(engine *analytics.Engine, orders order.Repository, products product.Repository) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", healthHandler)
	api.GET("/analytics/overview", overviewHandler(engine))
	api.GET("/analytics/sales-trends", salesTrendsHandler(engine))
	api.GET("/analytics/top-products", topProductsHandler(engine))
	api.POST("/orders/simulate", simulateOrderHandler(orders, products))
	api.GET("/orders", listOrdersHandler(orders))
	api.GET("/products", listProductsHandler(products))
	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func overviewHandler(engine *analytics.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		period := c.DefaultQuery("period", defaultPeriod)
		m, err := engine.OverviewMetrics(c.Request.Context(), period)
		if err != nil {
			abortAnalyticsError(c, err, "overview metrics failed")
			return
		}
		c.JSON(http.StatusOK, m)
	}
}

func salesTrendsHandler(engine *analytics.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		// period is required here; an empty token fails period resolution
		t, err := engine.SalesTrends(c.Request.Context(), c.Query("period"))
		if err != nil {
			abortAnalyticsError(c, err, "sales trends failed")
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func topProductsHandler(engine *analytics.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		period := c.DefaultQuery("period", defaultPeriod)
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		tp, err := engine.TopProducts(c.Request.Context(), period, limit)
		if err != nil {
			abortAnalyticsError(c, err, "top products failed")
			return
		}
		c.JSON(http.StatusOK, tp)
	}
}

func abortAnalyticsError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, analytics.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period parameter"})
	case errors.Is(err, analytics.ErrInvalidLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
	default:
		log.Error().Err(err).Str("rid", c.GetString("rid")).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func simulateOrderHandler(orders order.Repository, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.SimulateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		// presence and positivity: zero counts as missing
		if req.ProductID <= 0 || req.Quantity <= 0 || req.TotalAmount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}

		ctx := c.Request.Context()
		if _, err := products.GetByID(ctx, req.ProductID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			log.Error().Err(err).Str("rid", c.GetString("rid")).Msg("product lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		o := &order.Order{
			ProductID:   req.ProductID,
			Quantity:    req.Quantity,
			TotalAmount: decimal.NewFromFloat(req.TotalAmount),
			Status:      order.StatusCompleted,
		}
		if err := orders.Create(ctx, o); err != nil {
			log.Error().Err(err).Str("rid", c.GetString("rid")).Msg("order insert failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusCreated, order.SimulateResponse{
			ID:        o.ID,
			Status:    o.Status,
			OrderDate: o.OrderDate,
		})
	}
}

func listOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := listingParams(c, map[string]string{
			"status": c.Query("status"),
		})

		items, err := orders.List(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Str("rid", c.GetString("rid")).Msg("orders list failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		page, total := listing.Apply(items, params, orderSchema)
		c.JSON(http.StatusOK, gin.H{
			"orders": page,
			"total":  total,
			"page":   params.Page,
			"limit":  params.Limit,
		})
	}
}

func listProductsHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := listingParams(c, map[string]string{
			"category": c.Query("category"),
			"status":   c.Query("status"),
		})

		items, err := products.List(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Str("rid", c.GetString("rid")).Msg("products list failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		page, total := listing.Apply(items, params, productSchema)
		c.JSON(http.StatusOK, gin.H{
			"products": page,
			"total":    total,
			"page":     params.Page,
			"limit":    params.Limit,
		})
	}
}

// listingParams reads the shared table parameters. Malformed page/limit fall
// back to defaults; the list endpoints only fail on store errors.
func listingParams(c *gin.Context, filters map[string]string) listing.Params {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return listing.Params{
		Page:      page,
		Limit:     limit,
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.DefaultQuery("sort_order", "asc"),
		Filters:   filters,
	}
}
