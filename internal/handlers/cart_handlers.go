package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

type CartHandlers struct {
	cartService services.CartService
}

func NewCartHandlers(cartService services.CartService) *CartHandlers {
	return &CartHandlers{cartService: cartService}
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /v1/cart
//
//	@Summary	Show the caller's cart
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	models.Cart
//	@Security	BearerAuth
//	@Router		/v1/cart [get]
func (h *CartHandlers) GetCart(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	cart, err := h.cartService.GetCart(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to load cart")
	}
	return c.JSON(http.StatusOK, cart)
}

// AddItem handles POST /v1/cart/items
func (h *CartHandlers) AddItem(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	productID, err := common.ValidateUUID(req.ProductID, "product_id")
	if err != nil {
		return common.SendValidationError(c, "product_id", err.Error())
	}

	cart, err := h.cartService.AddItem(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		return respondError(c, err, "Failed to add item to cart")
	}
	return c.JSON(http.StatusOK, cart)
}

// UpdateItem handles PUT /v1/cart/items/:product_id
func (h *CartHandlers) UpdateItem(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	productID, ok, err := pathID(c, "product_id", "product_id")
	if !ok {
		return err
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	cart, err := h.cartService.UpdateQuantity(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		return respondError(c, err, "Failed to update cart")
	}
	return c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /v1/cart/items/:product_id
func (h *CartHandlers) RemoveItem(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	productID, ok, err := pathID(c, "product_id", "product_id")
	if !ok {
		return err
	}

	cart, err := h.cartService.RemoveItem(c.Request().Context(), userID, productID)
	if err != nil {
		return respondError(c, err, "Failed to remove cart item")
	}
	return c.JSON(http.StatusOK, cart)
}
