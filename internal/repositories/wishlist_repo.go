package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type WishlistRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistRepo struct {
	db DBTX
}

func NewWishlistRepo(db DBTX) WishlistRepository {
	return &wishlistRepo{db: db}
}

func (r *wishlistRepo) List(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error) {
	query := `
		SELECT w.user_id, w.product_id, w.added_at,
			p.name, p.unit_price::text, p.sale_price::text, p.stock_quantity, p.is_active
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.WishlistItem{}
	for rows.Next() {
		item := &models.WishlistItem{}
		var unitPrice string
		var salePrice *string
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.AddedAt,
			&item.Product.Name, &unitPrice, &salePrice, &item.Product.StockQuantity, &item.Product.IsActive); err != nil {
			return nil, err
		}
		item.Product.ID = item.ProductID
		if item.Product.UnitPrice, err = parseMoney(unitPrice); err != nil {
			return nil, err
		}
		if item.Product.SalePrice, err = parseNullMoney(salePrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Add is idempotent
func (r *wishlistRepo) Add(ctx context.Context, userID, productID uuid.UUID) error {
	query := `
		INSERT INTO wishlist_items (user_id, product_id, added_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, product_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, productID)
	return err
}

func (r *wishlistRepo) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
