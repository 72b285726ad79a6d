package jobs

import (
	"context"
	"log"

	"storefront/internal/repositories"

	"github.com/google/uuid"
)

const (
	defaultLowStockThreshold = 10
	maxLowStockAlerts        = 500
)

type InventoryAlertService struct {
	productRepo repositories.ProductRepository
	threshold   int
}

type InventoryAlert struct {
	ProductID    uuid.UUID
	ProductName  string
	CurrentStock int
	Threshold    int
}

func NewInventoryAlertService(productRepo repositories.ProductRepository, threshold int) *InventoryAlertService {
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}
	return &InventoryAlertService{
		productRepo: productRepo,
		threshold:   threshold,
	}
}

// CheckLowStock returns active products at or under the threshold, lowest stock first
func (a *InventoryAlertService) CheckLowStock(ctx context.Context) ([]InventoryAlert, error) {
	products, err := a.productRepo.ListLowStock(ctx, a.threshold, maxLowStockAlerts)
	if err != nil {
		log.Printf("Failed to list low stock products: %v", err)
		return nil, err
	}

	alerts := make([]InventoryAlert, 0, len(products))
	for _, product := range products {
		alerts = append(alerts, InventoryAlert{
			ProductID:    product.ID,
			ProductName:  product.Name,
			CurrentStock: product.StockQuantity,
			Threshold:    a.threshold,
		})
	}
	return alerts, nil
}

func (a *InventoryAlertService) LogLowStockAlerts(alerts []InventoryAlert) {
	if len(alerts) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("%d products at or under %d units:", len(alerts), a.threshold)
	for _, alert := range alerts {
		log.Printf("- Product '%s' (%s) has %d units", alert.ProductName, alert.ProductID, alert.CurrentStock)
	}
}

// ScheduledLowStockCheck is the body of the periodic alert job
func (a *InventoryAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}
	a.LogLowStockAlerts(alerts)

	log.Println("Scheduled low stock check completed successfully")
	return nil
}
