package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	productCacheTTL  = 15 * time.Minute
	imageURLExpiry   = time.Hour
	maxImageSize     = 10 << 20
	maxProductName   = 255
	maxProductDetail = 5000
)

var maxPrice = decimal.New(1, 10)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ProductService interface {
	List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	// GetByID returns active products only, with presigned image URLs
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)

	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	UploadProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, reader io.Reader, size int64, altText *string) (*models.ProductImage, error)
	DeleteProductImage(ctx context.Context, imageID uuid.UUID) error
}

type productService struct {
	productRepo      repositories.ProductRepository
	categoryRepo     repositories.CategoryRepository
	productImageRepo repositories.ProductImageRepository
	minioService     MinioService
	cacheService     caching.CacheService
	imageBucket      string
}

func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, productImageRepo repositories.ProductImageRepository, minioService MinioService, cacheService caching.CacheService, imageBucket string) ProductService {
	return &productService{
		productRepo:      productRepo,
		categoryRepo:     categoryRepo,
		productImageRepo: productImageRepo,
		minioService:     minioService,
		cacheService:     cacheService,
		imageBucket:      imageBucket,
	}
}

func (s *productService) List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	if filter == nil {
		filter = &models.ProductFilter{}
	}
	filter.Query = common.SanitizeSearchQuery(filter.Query)
	return s.productRepo.List(ctx, filter)
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cacheService != nil {
		cached, err := s.cacheService.GetProduct(ctx, id)
		if err != nil {
			log.Printf("Product cache read failed for %s: %v", id, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}

	images, err := s.productImageRepo.GetByProductID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product images: %w", err)
	}
	for _, image := range images {
		url, err := s.minioService.GetPresignedURL(ctx, s.imageBucket, image.ObjectKey, imageURLExpiry)
		if err != nil {
			log.Printf("Failed to presign image %s: %v", image.ID, err)
			continue
		}
		image.URL = url
	}
	product.Images = images

	if s.cacheService != nil {
		if err := s.cacheService.SetProduct(ctx, product, productCacheTTL); err != nil {
			log.Printf("Product cache write failed for %s: %v", id, err)
		}
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if err := s.validateProduct(ctx, product); err != nil {
		return err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.IsActive = true
	return s.productRepo.Create(ctx, product)
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if err := s.validateProduct(ctx, product); err != nil {
		return err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.invalidate(ctx, product.ID)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) UploadProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, reader io.Reader, size int64, altText *string) (*models.ProductImage, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, &ValidationError{Field: "image", Message: "image must be JPEG, PNG or WebP"}
	}
	if size <= 0 || size > maxImageSize {
		return nil, &ValidationError{Field: "image", Message: fmt.Sprintf("image must be between 1 byte and %d bytes", maxImageSize)}
	}
	if err := common.ValidateOptionalString(altText, "alt_text", 255); err != nil {
		return nil, newValidationError("alt_text", err)
	}
	if fileExt := strings.ToLower(filepath.Ext(filename)); fileExt == ".jpeg" || fileExt == ".png" || fileExt == ".webp" || fileExt == ".jpg" {
		ext = fileExt
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	image := &models.ProductImage{
		ID:        uuid.New(),
		ProductID: productID,
		AltText:   altText,
	}
	image.ObjectKey = fmt.Sprintf("products/%s/%s%s", productID, image.ID, ext)

	if err := s.minioService.UploadImage(ctx, s.imageBucket, image.ObjectKey, reader, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	if err := s.productImageRepo.Create(ctx, image); err != nil {
		if delErr := s.minioService.DeleteImage(ctx, s.imageBucket, image.ObjectKey); delErr != nil {
			log.Printf("Failed to remove orphaned image %s: %v", image.ObjectKey, delErr)
		}
		return nil, fmt.Errorf("failed to save image metadata: %w", err)
	}

	url, err := s.minioService.GetPresignedURL(ctx, s.imageBucket, image.ObjectKey, imageURLExpiry)
	if err == nil {
		image.URL = url
	}
	s.invalidate(ctx, productID)
	return image, nil
}

func (s *productService) DeleteProductImage(ctx context.Context, imageID uuid.UUID) error {
	image, err := s.productImageRepo.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	if err := s.minioService.DeleteImage(ctx, s.imageBucket, image.ObjectKey); err != nil {
		return fmt.Errorf("failed to delete image from storage: %w", err)
	}
	if err := s.productImageRepo.Delete(ctx, imageID); err != nil {
		return err
	}
	s.invalidate(ctx, image.ProductID)
	return nil
}

func (s *productService) validateProduct(ctx context.Context, product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if err := common.ValidateRequiredString(product.Name, "name"); err != nil {
		return newValidationError("name", err)
	}
	if len(product.Name) > maxProductName {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("name cannot exceed %d characters", maxProductName)}
	}
	if err := common.ValidateOptionalString(product.Description, "description", maxProductDetail); err != nil {
		return newValidationError("description", err)
	}
	if err := validatePrice(product.UnitPrice, "unit_price", "unit price"); err != nil {
		return err
	}
	if product.SalePrice.Valid {
		if err := validatePrice(product.SalePrice.Decimal, "sale_price", "sale price"); err != nil {
			return err
		}
	}
	if product.StockQuantity < 0 {
		return &ValidationError{Field: "stock_quantity", Message: "stock quantity cannot be negative"}
	}
	if product.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *product.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return &ValidationError{Field: "category_id", Message: "category does not exist"}
			}
			return err
		}
	}
	return nil
}

func (s *productService) invalidate(ctx context.Context, productID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeleteProducts(ctx, productID); err != nil {
		log.Printf("Failed to invalidate product cache for %s: %v", productID, err)
	}
}

// validatePrice keeps prices inside the NUMERIC(12, 2) price columns so
// nothing is rounded on write.
func validatePrice(price decimal.Decimal, field, label string) error {
	switch {
	case !price.IsPositive():
		return &ValidationError{Field: field, Message: label + " must be positive"}
	case !price.Equal(price.Round(2)):
		return &ValidationError{Field: field, Message: label + " cannot have more than two decimal places"}
	case price.GreaterThanOrEqual(maxPrice):
		return &ValidationError{Field: field, Message: label + " must be less than " + maxPrice.String()}
	}
	return nil
}
