package services

import (
	"context"
	"errors"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

type ReviewService interface {
	List(ctx context.Context, productID uuid.UUID, limit, offset int) (*models.ReviewSummary, error)
	// Submit creates the user's review of a product or replaces it
	Submit(ctx context.Context, userID, productID uuid.UUID, rating int, comment *string) (*models.Review, error)
}

type reviewService struct {
	reviewRepo  repositories.ReviewRepository
	productRepo repositories.ProductRepository
}

func NewReviewService(reviewRepo repositories.ReviewRepository, productRepo repositories.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) List(ctx context.Context, productID uuid.UUID, limit, offset int) (*models.ReviewSummary, error) {
	count, average, err := s.reviewRepo.Summary(ctx, productID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &models.ReviewSummary{
		ProductID:     productID,
		Count:         count,
		AverageRating: average,
		Reviews:       reviews,
	}, nil
}

func (s *reviewService) Submit(ctx context.Context, userID, productID uuid.UUID, rating int, comment *string) (*models.Review, error) {
	if err := common.ValidatePositiveInteger(rating, "rating", 5); err != nil {
		return nil, newValidationError("rating", err)
	}
	if err := common.ValidateOptionalString(comment, "comment", 1000); err != nil {
		return nil, newValidationError("comment", err)
	}
	if err := common.SanitizeHTMLField(comment, "comment"); err != nil {
		return nil, newValidationError("comment", err)
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviewRepo.Upsert(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}
