package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type cartEntry struct {
	productID uuid.UUID
	quantity  int
}

type storeState struct {
	products  map[uuid.UUID]models.Product
	carts     map[uuid.UUID][]cartEntry
	addresses map[uuid.UUID]models.Address
	orders    map[uuid.UUID]models.Order
	items     map[uuid.UUID][]models.OrderItem
	payments  map[uuid.UUID]models.Payment
}

func newStoreState() *storeState {
	return &storeState{
		products:  map[uuid.UUID]models.Product{},
		carts:     map[uuid.UUID][]cartEntry{},
		addresses: map[uuid.UUID]models.Address{},
		orders:    map[uuid.UUID]models.Order{},
		items:     map[uuid.UUID][]models.OrderItem{},
		payments:  map[uuid.UUID]models.Payment{},
	}
}

func (s *storeState) clone() *storeState {
	c := newStoreState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = append([]cartEntry(nil), v...)
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]models.OrderItem(nil), v...)
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	return c
}

// fakeStore is an in-memory CartRepository and TxRunner. Transactions run
// one at a time against a private copy that replaces the state on commit.
type fakeStore struct {
	mu      sync.Mutex
	state   *storeState
	failOn  string
	failErr error
	txCount int
	onTx    func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: newStoreState()}
}

func (f *fakeStore) addProduct(name, unitPrice, salePrice string, stock int) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Product{
		ID:            uuid.New(),
		Name:          name,
		UnitPrice:     decimal.RequireFromString(unitPrice),
		StockQuantity: stock,
		IsActive:      true,
	}
	if salePrice != "" {
		p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString(salePrice))
	}
	f.state.products[p.ID] = p
	return p.ID
}

func (f *fakeStore) setActive(productID uuid.UUID, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.state.products[productID]
	p.IsActive = active
	f.state.products[productID] = p
}

func (f *fakeStore) addToCart(userID, productID uuid.UUID, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.carts[userID] = append(f.state.carts[userID], cartEntry{productID: productID, quantity: quantity})
}

func (f *fakeStore) stock(productID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.products[productID].StockQuantity
}

func (f *fakeStore) cartSize(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.carts[userID])
}

func (f *fakeStore) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.orders)
}

func (f *fakeStore) snapshot() *storeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

func (f *fakeStore) ListWithProducts(ctx context.Context, userID uuid.UUID) ([]*models.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := []*models.CartLine{}
	for _, entry := range f.state.carts[userID] {
		p := f.state.products[entry.productID]
		lines = append(lines, &models.CartLine{
			UserID:    userID,
			ProductID: entry.productID,
			Quantity:  entry.quantity,
			Product:   p.Snapshot(),
			AddedAt:   time.Now(),
		})
	}
	return lines, nil
}

// AddItem merges into an existing line the way the upsert does.
func (f *fakeStore) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity, maxQuantity int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.state.carts[userID]
	for i := range entries {
		if entries[i].productID != productID {
			continue
		}
		if entries[i].quantity+quantity > maxQuantity {
			return 0, repositories.ErrQuantityLimit
		}
		entries[i].quantity += quantity
		return entries[i].quantity, nil
	}
	if quantity > maxQuantity {
		return 0, repositories.ErrQuantityLimit
	}
	f.state.carts[userID] = append(entries, cartEntry{productID: productID, quantity: quantity})
	return quantity, nil
}

func (f *fakeStore) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	return errors.New("not supported")
}

func (f *fakeStore) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return errors.New("not supported")
}

func (f *fakeStore) RunInTx(ctx context.Context, fn func(tx repositories.StoreTx) error) error {
	if f.onTx != nil {
		f.onTx()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCount++

	work := f.state.clone()
	if err := fn(&fakeTx{state: work, store: f}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.state = work
	return nil
}

type fakeTx struct {
	state *storeState
	store *fakeStore
}

func (t *fakeTx) fail(op string) error {
	if t.store.failOn == op {
		return t.store.failErr
	}
	return nil
}

func (t *fakeTx) CreateAddress(ctx context.Context, address *models.Address) error {
	if err := t.fail("CreateAddress"); err != nil {
		return err
	}
	t.state.addresses[address.ID] = *address
	return nil
}

func (t *fakeTx) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := t.fail("CreateOrder"); err != nil {
		return err
	}
	t.state.orders[order.ID] = *order
	return nil
}

func (t *fakeTx) CreateOrderItems(ctx context.Context, items []*models.OrderItem) error {
	if err := t.fail("CreateOrderItems"); err != nil {
		return err
	}
	for _, item := range items {
		t.state.items[item.OrderID] = append(t.state.items[item.OrderID], *item)
	}
	return nil
}

func (t *fakeTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := t.fail("CreatePayment"); err != nil {
		return err
	}
	t.state.payments[payment.OrderID] = *payment
	return nil
}

func (t *fakeTx) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if err := t.fail("DecrementStock"); err != nil {
		return err
	}
	p, ok := t.state.products[productID]
	if !ok || !p.IsActive || p.StockQuantity < quantity {
		conflict := &repositories.StockConflictError{ProductID: productID, Requested: quantity}
		if ok && p.IsActive {
			conflict.Available = p.StockQuantity
		}
		return conflict
	}
	p.StockQuantity -= quantity
	t.state.products[productID] = p
	return nil
}

func (t *fakeTx) ClearCart(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	if err := t.fail("ClearCart"); err != nil {
		return err
	}
	ordered := map[uuid.UUID]bool{}
	for _, id := range productIDs {
		ordered[id] = true
	}
	var kept []cartEntry
	for _, entry := range t.state.carts[userID] {
		if !ordered[entry.productID] {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(t.state.carts, userID)
		return nil
	}
	t.state.carts[userID] = kept
	return nil
}

func (t *fakeTx) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := t.state.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &order, nil
}

func (t *fakeTx) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	items := []*models.OrderItem{}
	for _, item := range t.state.items[orderID] {
		item := item
		items = append(items, &item)
	}
	return items, nil
}

func (t *fakeTx) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	order, ok := t.state.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	order.Status = status
	t.state.orders[id] = order
	return nil
}

func (t *fakeTx) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status models.PaymentStatus) error {
	payment := t.state.payments[orderID]
	payment.Status = status
	t.state.payments[orderID] = payment
	return nil
}

func (t *fakeTx) RestockProduct(ctx context.Context, productID uuid.UUID, quantity int) error {
	if err := t.fail("RestockProduct"); err != nil {
		return err
	}
	p := t.state.products[productID]
	p.StockQuantity += quantity
	t.state.products[productID] = p
	return nil
}
