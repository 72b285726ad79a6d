package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type ProductImageRepository interface {
	Create(ctx context.Context, image *models.ProductImage) error
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productImageRepo struct {
	db DBTX
}

func NewProductImageRepo(db DBTX) ProductImageRepository {
	return &productImageRepo{db: db}
}

func (r *productImageRepo) Create(ctx context.Context, image *models.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, object_key, alt_text, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, query, image.ID, image.ProductID, image.ObjectKey, image.AltText)
	return err
}

func (r *productImageRepo) GetByProductID(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	query := `
		SELECT id, product_id, object_key, alt_text, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []*models.ProductImage{}
	for rows.Next() {
		image := &models.ProductImage{}
		if err := rows.Scan(&image.ID, &image.ProductID, &image.ObjectKey, &image.AltText, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *productImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error) {
	image := &models.ProductImage{}
	query := `
		SELECT id, product_id, object_key, alt_text, created_at
		FROM product_images
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&image.ID, &image.ProductID, &image.ObjectKey, &image.AltText, &image.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return image, nil
}

func (r *productImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
