package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

const categoryCacheTTL = time.Hour

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	cacheService caching.CacheService
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, cacheService caching.CacheService) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		cacheService: cacheService,
	}
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	if s.cacheService != nil {
		cached, err := s.cacheService.GetCategories(ctx)
		if err != nil {
			log.Printf("Category cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheService != nil {
		if err := s.cacheService.SetCategories(ctx, categories, categoryCacheTTL); err != nil {
			log.Printf("Category cache write failed: %v", err)
		}
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if err := common.ValidateRequiredString(category.Name, "name"); err != nil {
		return newValidationError("name", err)
	}
	slug := category.Slug
	if slug == "" {
		slug = category.Name
	}
	category.Slug = Slugify(slug)
	if category.Slug == "" {
		return &ValidationError{Field: "slug", Message: "slug must contain letters or digits"}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *categoryService) invalidate(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeleteCategories(ctx); err != nil {
		log.Printf("Failed to invalidate category cache: %v", err)
	}
}

// Slugify lowercases name and joins its alphanumeric runs with hyphens
func Slugify(name string) string {
	return strings.Trim(slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
