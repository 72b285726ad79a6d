package repositories

import (
	"context"
	"errors"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CartRepository interface {
	// ListWithProducts returns the user's cart lines joined with the current
	// product row in a single read.
	ListWithProducts(ctx context.Context, userID uuid.UUID) ([]*models.CartLine, error)
	// AddItem inserts a line or adds quantity to the existing one and
	// returns the resulting quantity. A merge that would exceed maxQuantity
	// leaves the line untouched and returns ErrQuantityLimit.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity, maxQuantity int) (int, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
}

type cartRepo struct {
	db DBTX
}

func NewCartRepo(db DBTX) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) ListWithProducts(ctx context.Context, userID uuid.UUID) ([]*models.CartLine, error) {
	query := `
		SELECT c.user_id, c.product_id, c.quantity, c.created_at,
			p.name, p.unit_price::text, p.sale_price::text, p.stock_quantity, p.is_active
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []*models.CartLine{}
	for rows.Next() {
		line := &models.CartLine{}
		var unitPrice string
		var salePrice *string
		if err := rows.Scan(&line.UserID, &line.ProductID, &line.Quantity, &line.AddedAt,
			&line.Product.Name, &unitPrice, &salePrice, &line.Product.StockQuantity, &line.Product.IsActive); err != nil {
			return nil, err
		}
		line.Product.ID = line.ProductID
		if line.Product.UnitPrice, err = parseMoney(unitPrice); err != nil {
			return nil, err
		}
		if line.Product.SalePrice, err = parseNullMoney(salePrice); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *cartRepo) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity, maxQuantity int) (int, error) {
	if quantity > maxQuantity {
		return 0, ErrQuantityLimit
	}
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		WHERE cart_items.quantity + EXCLUDED.quantity <= $4
		RETURNING quantity
	`
	var total int
	err := r.db.QueryRow(ctx, query, userID, productID, quantity, maxQuantity).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrQuantityLimit
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *cartRepo) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE user_id = $2 AND product_id = $3
	`
	tag, err := r.db.Exec(ctx, query, quantity, userID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepo) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
