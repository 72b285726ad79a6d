package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

const maxCartLineQuantity = 100

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	// UpdateQuantity sets a line's quantity; zero removes the line
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	lines, err := s.cartRepo.ListWithProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewCart(lines), nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if err := common.ValidatePositiveInteger(quantity, "quantity", maxCartLineQuantity); err != nil {
		return nil, newValidationError("quantity", err)
	}
	if err := s.requireActiveProduct(ctx, productID); err != nil {
		return nil, err
	}

	if _, err := s.cartRepo.AddItem(ctx, userID, productID, quantity, maxCartLineQuantity); err != nil {
		if errors.Is(err, repositories.ErrQuantityLimit) {
			return nil, &ValidationError{Field: "quantity", Message: fmt.Sprintf("cart line quantity cannot exceed %d", maxCartLineQuantity)}
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if err := common.ValidatePositiveInteger(quantity, "quantity", maxCartLineQuantity); err != nil {
		return nil, newValidationError("quantity", err)
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	if err := s.cartRepo.RemoveItem(ctx, userID, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) requireActiveProduct(ctx context.Context, productID uuid.UUID) error {
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
	return nil
}
