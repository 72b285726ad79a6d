package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressDetails is the address block of a checkout request
type AddressDetails struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip,omitempty"`
	Country  string `json:"country,omitempty"`
}

type PlaceOrderRequest struct {
	ShippingDetails AddressDetails       `json:"shippingDetails"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	// Nil means true
	BillingAddressSameAsShipping *bool           `json:"billingAddressSameAsShipping,omitempty"`
	BillingDetails               *AddressDetails `json:"billingDetails,omitempty"`
}

func (r *PlaceOrderRequest) billingSameAsShipping() bool {
	return r.BillingAddressSameAsShipping == nil || *r.BillingAddressSameAsShipping
}

type CheckoutService interface {
	// PlaceOrder turns the user's cart into a PENDING order and returns its id.
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *PlaceOrderRequest) (uuid.UUID, error)
}

type checkoutService struct {
	cartRepo     repositories.CartRepository
	txRunner     repositories.TxRunner
	cacheService caching.CacheService
	timeout      time.Duration
}

func NewCheckoutService(cartRepo repositories.CartRepository, txRunner repositories.TxRunner, cacheService caching.CacheService, timeout time.Duration) CheckoutService {
	return &checkoutService{
		cartRepo:     cartRepo,
		txRunner:     txRunner,
		cacheService: cacheService,
		timeout:      timeout,
	}
}

// pricedLine is one product of the order after quantities were merged
type pricedLine struct {
	product  models.ProductSnapshot
	quantity int
	price    decimal.Decimal
}

func (s *checkoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *PlaceOrderRequest) (uuid.UUID, error) {
	if err := validatePlaceOrderRequest(req); err != nil {
		return uuid.Nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cartLines, err := s.cartRepo.ListWithProducts(ctx, userID)
	if err != nil {
		return uuid.Nil, &OrderPlacementFailedError{Cause: fmt.Errorf("load cart: %w", err)}
	}
	if len(cartLines) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	lines := mergeCartLines(cartLines)
	if err := checkStock(lines); err != nil {
		return uuid.Nil, err
	}
	total := orderTotal(lines)

	orderID := uuid.New()
	shipping := newAddress(userID, models.AddressTypeShipping, &req.ShippingDetails)
	billing := shipping
	if !req.billingSameAsShipping() {
		billing = newAddress(userID, models.AddressTypeBilling, req.BillingDetails)
	}

	order := &models.Order{
		ID:                orderID,
		UserID:            userID,
		TotalAmount:       total,
		Status:            models.OrderStatusPending,
		ShippingAddressID: shipping.ID,
		BillingAddressID:  billing.ID,
	}
	items := make([]*models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, &models.OrderItem{
			ID:               uuid.New(),
			OrderID:          orderID,
			ProductID:        line.product.ID,
			ProductName:      line.product.Name,
			Quantity:         line.quantity,
			UnitPriceCharged: line.price,
		})
	}
	payment := &models.Payment{
		ID:      uuid.New(),
		OrderID: orderID,
		Method:  req.PaymentMethod,
		Amount:  total,
		Status:  models.PaymentStatusPending,
	}

	err = s.txRunner.RunInTx(ctx, func(tx repositories.StoreTx) error {
		if err := tx.CreateAddress(ctx, shipping); err != nil {
			return err
		}
		if billing != shipping {
			if err := tx.CreateAddress(ctx, billing); err != nil {
				return err
			}
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return err
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
		for _, line := range byProductID(lines) {
			if err := tx.DecrementStock(ctx, line.product.ID, line.quantity); err != nil {
				return err
			}
		}
		return tx.ClearCart(ctx, userID, orderedProducts(lines))
	})
	if err != nil {
		log.Printf("Failed to place order for user %s: %v", userID, err)
		return uuid.Nil, &OrderPlacementFailedError{Cause: stockConflictCause(err, lines)}
	}

	s.invalidateProducts(ctx, lines)
	return orderID, nil
}

func (s *checkoutService) invalidateProducts(ctx context.Context, lines []*pricedLine) {
	if s.cacheService == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.product.ID)
	}
	if err := s.cacheService.DeleteProducts(context.WithoutCancel(ctx), ids...); err != nil {
		log.Printf("Failed to invalidate product cache after checkout: %v", err)
	}
}

// mergeCartLines sums quantities per product, keeping first-seen order.
func mergeCartLines(cartLines []*models.CartLine) []*pricedLine {
	byID := make(map[uuid.UUID]*pricedLine, len(cartLines))
	lines := make([]*pricedLine, 0, len(cartLines))
	for _, cl := range cartLines {
		if line, ok := byID[cl.ProductID]; ok {
			line.quantity += cl.Quantity
			continue
		}
		line := &pricedLine{product: cl.Product, quantity: cl.Quantity, price: cl.Product.EffectivePrice()}
		line.product.ID = cl.ProductID
		byID[cl.ProductID] = line
		lines = append(lines, line)
	}
	return lines
}

func checkStock(lines []*pricedLine) error {
	for _, line := range lines {
		available := line.product.StockQuantity
		if !line.product.IsActive {
			available = 0
		}
		if available < line.quantity {
			return &InsufficientStockError{
				ProductID:   line.product.ID,
				ProductName: line.product.Name,
				Requested:   line.quantity,
				Available:   available,
			}
		}
	}
	return nil
}

func orderTotal(lines []*pricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.price.Mul(decimal.NewFromInt(int64(line.quantity))))
	}
	return total
}

// byProductID orders stock writes so concurrent checkouts lock rows in the
// same order.
func byProductID(lines []*pricedLine) []*pricedLine {
	sorted := make([]*pricedLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].product.ID[:], sorted[j].product.ID[:]) < 0
	})
	return sorted
}

func stockConflictCause(err error, lines []*pricedLine) error {
	var conflict *repositories.StockConflictError
	if !errors.As(err, &conflict) {
		return err
	}
	stockErr := &InsufficientStockError{
		ProductID: conflict.ProductID,
		Requested: conflict.Requested,
		Available: conflict.Available,
	}
	for _, line := range lines {
		if line.product.ID == conflict.ProductID {
			stockErr.ProductName = line.product.Name
		}
	}
	return stockErr
}

func newAddress(userID uuid.UUID, addressType models.AddressType, d *AddressDetails) *models.Address {
	return &models.Address{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     addressType,
		FullName: d.FullName,
		Email:    d.Email,
		Address1: d.Address1,
		Address2: common.OptionalString(d.Address2),
		City:     d.City,
		State:    d.State,
		Zip:      common.OptionalString(d.Zip),
		Country:  common.OptionalString(d.Country),
	}
}

func validatePlaceOrderRequest(req *PlaceOrderRequest) error {
	if req == nil {
		return &ValidationError{Field: "shippingDetails", Message: "shippingDetails is required"}
	}
	if err := validateAddressDetails("shippingDetails", &req.ShippingDetails); err != nil {
		return err
	}
	if !req.PaymentMethod.Valid() {
		return &ValidationError{Field: "paymentMethod", Message: fmt.Sprintf("unsupported payment method %q", req.PaymentMethod)}
	}
	if !req.billingSameAsShipping() {
		if req.BillingDetails == nil {
			return &ValidationError{Field: "billingDetails", Message: "billingDetails is required when billing address differs from shipping"}
		}
		if err := validateAddressDetails("billingDetails", req.BillingDetails); err != nil {
			return err
		}
	}
	return nil
}

func validateAddressDetails(prefix string, d *AddressDetails) error {
	required := []struct {
		field string
		value string
	}{
		{"fullName", d.FullName},
		{"email", d.Email},
		{"address1", d.Address1},
		{"city", d.City},
		{"state", d.State},
	}
	for _, r := range required {
		if err := common.ValidateRequiredString(r.value, r.field); err != nil {
			return newValidationError(prefix+"."+r.field, err)
		}
	}
	if err := common.ValidateEmail(d.Email, "email"); err != nil {
		return newValidationError(prefix+".email", err)
	}
	return nil
}

func orderedProducts(lines []*pricedLine) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.product.ID)
	}
	return ids
}
