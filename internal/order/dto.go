package order

import "time"

// SimulateRequest is the body of POST /api/orders/simulate.
type SimulateRequest struct {
	ProductID   int64   `json:"product_id" example:"1"`
	Quantity    int     `json:"quantity" example:"2"`
	TotalAmount float64 `json:"total_amount" example:"399.98"`
}

type SimulateResponse struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	OrderDate time.Time `json:"order_date"`
}
