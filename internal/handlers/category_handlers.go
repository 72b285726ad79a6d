package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	categoryService services.CategoryService
}

func NewCategoryHandlers(categoryService services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

// ListCategories handles GET /v1/categories
//
//	@Summary	List categories
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/v1/categories [get]
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	categories, err := h.categoryService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to list categories")
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// CreateCategory handles POST /v1/admin/categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := h.categoryService.Create(c.Request().Context(), category); err != nil {
		return respondError(c, err, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, category)
}

// DeleteCategory handles DELETE /v1/admin/categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	categoryID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}
	if err := h.categoryService.Delete(c.Request().Context(), categoryID); err != nil {
		return respondError(c, err, "Failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}
