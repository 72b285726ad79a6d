package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"storefront/internal/caching"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

type OrderService interface {
	ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error)
	// GetOrder returns the order with its lines and payment. Orders of other
	// users are reported as ErrOrderNotFound.
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	// UpdateStatus moves an order along its fulfillment path. Cancelling
	// returns the ordered quantities to stock in the same transaction.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo    repositories.OrderRepository
	txRunner     repositories.TxRunner
	cacheService caching.CacheService
}

func NewOrderService(orderRepo repositories.OrderRepository, txRunner repositories.TxRunner, cacheService caching.CacheService) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		txRunner:     txRunner,
		cacheService: cacheService,
	}
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := s.loadDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown order status %q", status)}
	}

	var restocked []uuid.UUID
	err := s.txRunner.RunInTx(ctx, func(tx repositories.StoreTx) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, order.Status, status)
		}

		if status == models.OrderStatusCancelled {
			items, err := tx.ListOrderItems(ctx, orderID)
			if err != nil {
				return err
			}
			sort.Slice(items, func(i, j int) bool {
				return bytes.Compare(items[i].ProductID[:], items[j].ProductID[:]) < 0
			})
			for _, item := range items {
				if err := tx.RestockProduct(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				restocked = append(restocked, item.ProductID)
			}
			if err := tx.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusCancelled); err != nil {
				return err
			}
		}

		return tx.UpdateOrderStatus(ctx, orderID, status)
	})
	if err != nil {
		return nil, err
	}

	if len(restocked) > 0 && s.cacheService != nil {
		if err := s.cacheService.DeleteProducts(ctx, restocked...); err != nil {
			log.Printf("Failed to invalidate product cache after cancelling order %s: %v", orderID, err)
		}
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.loadDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) loadDetails(ctx context.Context, order *models.Order) error {
	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items

	payment, err := s.orderRepo.GetPayment(ctx, order.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to load payment: %w", err)
	}
	order.Payment = payment
	return nil
}
