package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	ListLowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error)
}

const productColumns = `id, category_id, name, description, unit_price::text, sale_price::text, stock_quantity, is_active, created_at, updated_at`

type productRepo struct {
	db DBTX
}

func NewProductRepo(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, category_id, name, description, unit_price, sale_price, stock_quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.CategoryID, product.Name, product.Description, product.UnitPrice, product.SalePrice, product.StockQuantity, product.IsActive)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, unit_price = $4, sale_price = $5, stock_quantity = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, product.CategoryID, product.Name, product.Description, product.UnitPrice, product.SalePrice, product.StockQuantity, product.IsActive, product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate hides a product from the catalog. Rows are kept because order
// history references them.
func (r *productRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE`
	args := []interface{}{}
	argCount := 0

	if filter.Query != "" {
		argCount++
		query += fmt.Sprintf(` AND (name ILIKE $%d OR COALESCE(description, '') ILIKE $%d)`, argCount, argCount)
		args = append(args, "%"+filter.Query+"%")
	}

	if filter.CategoryID != nil {
		argCount++
		query += fmt.Sprintf(` AND category_id = $%d`, argCount)
		args = append(args, *filter.CategoryID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argCount+1, argCount+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *productRepo) ListLowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE AND stock_quantity <= $1 ORDER BY stock_quantity ASC LIMIT $2`
	rows, err := r.db.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]*models.Product, error) {
	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	var unitPrice string
	var salePrice *string
	if err := row.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description, &unitPrice, &salePrice, &product.StockQuantity, &product.IsActive, &product.CreatedAt, &product.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if product.UnitPrice, err = parseMoney(unitPrice); err != nil {
		return nil, err
	}
	if product.SalePrice, err = parseNullMoney(salePrice); err != nil {
		return nil, err
	}
	return product, nil
}
