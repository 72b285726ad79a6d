package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepository is the read side of orders. Orders are only written
// inside a checkout or fulfillment transaction, see TxRunner.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error)
	GetPayment(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
}

const orderColumns = `id, user_id, total_amount::text, status, shipping_address_id, billing_address_id, created_at, updated_at`

type orderRepo struct {
	db DBTX
}

func NewOrderRepo(db DBTX) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

// GetByIDForUser reports ErrNotFound for orders owned by someone else.
func (r *orderRepo) GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepo) ListItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	return listOrderItems(ctx, r.db, orderID)
}

func (r *orderRepo) GetPayment(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	payment := &models.Payment{}
	var amount string
	query := `
		SELECT id, order_id, method, amount::text, status, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`
	err := r.db.QueryRow(ctx, query, orderID).Scan(&payment.ID, &payment.OrderID, &payment.Method, &amount, &payment.Status, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if payment.Amount, err = parseMoney(amount); err != nil {
		return nil, err
	}
	return payment, nil
}

func listOrderItems(ctx context.Context, db DBTX, orderID uuid.UUID) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price_charged::text, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name ASC
	`
	rows, err := db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.OrderItem{}
	for rows.Next() {
		item := &models.OrderItem{}
		var price string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &price, &item.CreatedAt); err != nil {
			return nil, err
		}
		if item.UnitPriceCharged, err = parseMoney(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	var total string
	if err := row.Scan(&order.ID, &order.UserID, &total, &order.Status, &order.ShippingAddressID, &order.BillingAddressID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if order.TotalAmount, err = parseMoney(total); err != nil {
		return nil, err
	}
	return order, nil
}
