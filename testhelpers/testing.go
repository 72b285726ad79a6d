package testhelpers

import (
	"context"
	"os"
	"testing"

	"storefront/internal/models"
	"storefront/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL, migrates it and empties every
// table. The test is skipped when no database is configured.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	if err := database.Migrate(connString); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	pool, err := database.NewPool(context.Background(), connString, database.PoolOptions{MaxConns: 8})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	truncate := `TRUNCATE reviews, wishlist_items, payments, order_items, orders, addresses, cart_items, product_images, products, categories, users CASCADE`
	if _, err := pool.Exec(context.Background(), truncate); err != nil {
		pool.Close()
		t.Fatalf("Failed to reset test database: %v", err)
	}

	db := &TestDB{Pool: pool, Cleanup: pool.Close}
	t.Cleanup(db.Cleanup)
	return db
}

// SetupTestUser creates a shopper, or an admin when isAdmin is set
func SetupTestUser(t *testing.T, db *TestDB, isAdmin bool) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	query := `INSERT INTO users (id, email, full_name, is_admin) VALUES ($1, $2, $3, $4)`
	_, err := db.Pool.Exec(context.Background(), query, userID, userID.String()+"@example.com", "Test User", isAdmin)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return userID
}

// SetupTestProduct creates an active product. salePrice may be empty.
func SetupTestProduct(t *testing.T, db *TestDB, name, unitPrice, salePrice string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		Name:          name,
		UnitPrice:     decimal.RequireFromString(unitPrice),
		StockQuantity: stock,
		IsActive:      true,
	}
	if salePrice != "" {
		product.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString(salePrice))
	}

	query := `
		INSERT INTO products (id, name, unit_price, sale_price, stock_quantity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		product.ID, product.Name, product.UnitPrice, product.SalePrice, product.StockQuantity, product.IsActive)
	if err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}

// AddToCart puts quantity units of a product in the user's cart
func AddToCart(t *testing.T, db *TestDB, userID, productID uuid.UUID, quantity int) {
	t.Helper()

	query := `INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)`
	if _, err := db.Pool.Exec(context.Background(), query, userID, productID, quantity); err != nil {
		t.Fatalf("Failed to add cart item: %v", err)
	}
}

// StockOf reads the current stock of a product
func StockOf(t *testing.T, db *TestDB, productID uuid.UUID) int {
	t.Helper()

	var stock int
	if err := db.Pool.QueryRow(context.Background(), `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("Failed to read stock: %v", err)
	}
	return stock
}

// CountRows counts the rows of a table
func CountRows(t *testing.T, db *TestDB, table string) int {
	t.Helper()

	var count int
	if err := db.Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return count
}
