package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

type CheckoutHandlers struct {
	checkoutService services.CheckoutService
}

func NewCheckoutHandlers(checkoutService services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkoutService: checkoutService}
}

// PlaceOrderResponse is returned once the order is committed
type PlaceOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

// PlaceOrder handles POST /v1/checkout
//
//	@Summary	Place an order from the caller's cart
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		request	body		services.PlaceOrderRequest	true	"Shipping, billing and payment details"
//	@Success	200		{object}	PlaceOrderResponse
//	@Failure	400		{object}	common.ErrorResponse
//	@Failure	401		{object}	common.ErrorResponse
//	@Failure	500		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/checkout [post]
func (h *CheckoutHandlers) PlaceOrder(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	orderID, err := h.checkoutService.PlaceOrder(c.Request().Context(), userID, &req)
	if err != nil {
		return respondError(c, err, "Failed to place order")
	}

	return c.JSON(http.StatusOK, PlaceOrderResponse{Success: true, OrderID: orderID.String()})
}
