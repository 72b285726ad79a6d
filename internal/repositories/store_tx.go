package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StockConflictError reports a conditional stock decrement that matched no
// row. Available is the quantity observed inside the same transaction.
type StockConflictError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock conflict for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// CheckoutTx holds the writes of one order placement
type CheckoutTx interface {
	CreateAddress(ctx context.Context, address *models.Address) error
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []*models.OrderItem) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
	// ClearCart removes the ordered lines only, so a line added while the
	// order was being placed stays in the cart.
	ClearCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
}

// FulfillmentTx holds the writes of an order status change
type FulfillmentTx interface {
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status models.PaymentStatus) error
	RestockProduct(ctx context.Context, productID uuid.UUID, quantity int) error
}

type StoreTx interface {
	CheckoutTx
	FulfillmentTx
}

// TxRunner runs fn in one database transaction. It commits when fn returns
// nil and rolls back otherwise; fn's error is returned unchanged.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx StoreTx) error) error
}

type txRunner struct {
	pool Pool
}

func NewTxRunner(pool Pool) TxRunner {
	return &txRunner{pool: pool}
}

func (r *txRunner) RunInTx(ctx context.Context, fn func(tx StoreTx) error) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(&storeTx{tx: tx}); err != nil {
		rollback(ctx, tx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	// The caller's context may already be cancelled.
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Printf("Failed to roll back transaction: %v", err)
	}
}

type storeTx struct {
	tx pgx.Tx
}

func (t *storeTx) CreateAddress(ctx context.Context, address *models.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, type, full_name, email, address1, address2, city, state, zip, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`
	_, err := t.tx.Exec(ctx, query, address.ID, address.UserID, address.Type, address.FullName, address.Email,
		address.Address1, address.Address2, address.City, address.State, address.Zip, address.Country)
	if err != nil {
		return fmt.Errorf("create %s address: %w", address.Type, err)
	}
	return nil
}

func (t *storeTx) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, user_id, total_amount, status, shipping_address_id, billing_address_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := t.tx.Exec(ctx, query, order.ID, order.UserID, order.TotalAmount, order.Status, order.ShippingAddressID, order.BillingAddressID)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

var orderItemColumns = []string{"id", "order_id", "product_id", "product_name", "quantity", "unit_price_charged"}

// CreateOrderItems writes all lines with a single COPY.
func (t *storeTx) CreateOrderItems(ctx context.Context, items []*models.OrderItem) error {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPriceCharged})
	}

	copied, err := t.tx.CopyFrom(ctx, pgx.Identifier{"order_items"}, orderItemColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("create order items: %w", err)
	}
	if int(copied) != len(items) {
		return fmt.Errorf("create order items: copied %d of %d rows", copied, len(items))
	}
	return nil
}

func (t *storeTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, method, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := t.tx.Exec(ctx, query, payment.ID, payment.OrderID, payment.Method, payment.Amount, payment.Status)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// DecrementStock subtracts quantity only while enough stock remains, so a
// concurrent checkout that got there first is never overwritten. A miss
// returns *StockConflictError.
func (t *storeTx) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND is_active = TRUE AND stock_quantity >= $1
	`
	tag, err := t.tx.Exec(ctx, query, quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock for product %s: %w", productID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	conflict := &StockConflictError{ProductID: productID, Requested: quantity}
	var stock int
	var active bool
	err = t.tx.QueryRow(ctx, `SELECT stock_quantity, is_active FROM products WHERE id = $1`, productID).Scan(&stock, &active)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read stock for product %s: %w", productID, err)
	case active:
		conflict.Available = stock
	}
	return conflict
}

func (t *storeTx) ClearCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = ANY($2)`
	if _, err := t.tx.Exec(ctx, query, userID, productIDs); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (t *storeTx) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrder(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (t *storeTx) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	return listOrderItems(ctx, t.tx, orderID)
}

func (t *storeTx) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *storeTx) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status models.PaymentStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE payments SET status = $1, updated_at = NOW() WHERE order_id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

func (t *storeTx) RestockProduct(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `UPDATE products SET stock_quantity = stock_quantity + $1, updated_at = NOW() WHERE id = $2`
	if _, err := t.tx.Exec(ctx, query, quantity, productID); err != nil {
		return fmt.Errorf("restock product %s: %w", productID, err)
	}
	return nil
}
