package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

type WishlistHandlers struct {
	wishlistService services.WishlistService
}

func NewWishlistHandlers(wishlistService services.WishlistService) *WishlistHandlers {
	return &WishlistHandlers{wishlistService: wishlistService}
}

type AddWishlistItemRequest struct {
	ProductID string `json:"product_id"`
}

// ListWishlist handles GET /v1/wishlist
func (h *WishlistHandlers) ListWishlist(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	items, err := h.wishlistService.List(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to load wishlist")
	}
	if items == nil {
		items = []*models.WishlistItem{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// AddToWishlist handles POST /v1/wishlist. Adding twice is not an error.
func (h *WishlistHandlers) AddToWishlist(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req AddWishlistItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	productID, err := common.ValidateUUID(req.ProductID, "product_id")
	if err != nil {
		return common.SendValidationError(c, "product_id", err.Error())
	}

	if err := h.wishlistService.Add(c.Request().Context(), userID, productID); err != nil {
		return respondError(c, err, "Failed to update wishlist")
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveFromWishlist handles DELETE /v1/wishlist/:product_id
func (h *WishlistHandlers) RemoveFromWishlist(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	productID, ok, err := pathID(c, "product_id", "product_id")
	if !ok {
		return err
	}

	if err := h.wishlistService.Remove(c.Request().Context(), userID, productID); err != nil {
		return respondError(c, err, "Failed to update wishlist")
	}
	return c.NoContent(http.StatusNoContent)
}
