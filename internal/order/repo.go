package order

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Order, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Create inserts the order and fills in the store-assigned id and order_date.
func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (product_id, quantity, total_amount, status)
		VALUES ($1,$2,$3,$4)
		RETURNING id, order_date
	`, o.ProductID, o.Quantity, o.TotalAmount.String(), o.Status).Scan(&o.ID, &o.OrderDate)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `
		SELECT o.id, o.product_id, p.name, p.category, o.quantity, o.total_amount::text, o.status, o.order_date
		FROM orders o
		JOIN products p ON p.id = o.product_id
		ORDER BY o.order_date DESC, o.id DESC
	`)
}

// ListBetween returns orders whose order_date falls in the half-open range [from, to).
func (r *PGRepo) ListBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	return r.list(ctx, `
		SELECT o.id, o.product_id, p.name, p.category, o.quantity, o.total_amount::text, o.status, o.order_date
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.order_date >= $1 AND o.order_date < $2
		ORDER BY o.order_date ASC, o.id ASC
	`, from, to)
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var amount string
		if err := rows.Scan(&o.ID, &o.ProductID, &o.ProductName, &o.Category, &o.Quantity, &amount, &o.Status, &o.OrderDate); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if o.TotalAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse total_amount for order %d: %w", o.ID, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
