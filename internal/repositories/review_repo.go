package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type ReviewRepository interface {
	// Upsert keeps one review per (product, user); a resubmission replaces
	// rating and comment.
	Upsert(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.Review, error)
	Summary(ctx context.Context, productID uuid.UUID) (count int, average float64, err error)
}

type reviewRepo struct {
	db DBTX
}

func NewReviewRepo(db DBTX) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Upsert(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (product_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, review.ID, review.ProductID, review.UserID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.Review, error) {
	query := `
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		review := &models.Review{}
		if err := rows.Scan(&review.ID, &review.ProductID, &review.UserID, &review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *reviewRepo) Summary(ctx context.Context, productID uuid.UUID) (int, float64, error) {
	var count int
	var average float64
	query := `SELECT COUNT(*), COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE product_id = $1`
	if err := r.db.QueryRow(ctx, query, productID).Scan(&count, &average); err != nil {
		return 0, 0, err
	}
	return count, average, nil
}
