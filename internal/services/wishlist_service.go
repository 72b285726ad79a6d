package services

import (
	"context"
	"errors"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

type WishlistService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistService struct {
	wishlistRepo repositories.WishlistRepository
	productRepo  repositories.ProductRepository
}

func NewWishlistService(wishlistRepo repositories.WishlistRepository, productRepo repositories.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]*models.WishlistItem, error) {
	return s.wishlistRepo.List(ctx, userID)
}

func (s *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if !product.IsActive {
		return ErrProductNotFound
	}
	return s.wishlistRepo.Add(ctx, userID, productID)
}

func (s *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}
