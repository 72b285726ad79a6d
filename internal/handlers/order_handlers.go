package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers serves order history and admin fulfillment
type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// ListOrders handles GET /v1/orders, newest first
//
//	@Summary	The caller's orders
//	@Tags		orders
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/v1/orders [get]
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return respondError(c, err, "Failed to list orders")
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// GetOrder handles GET /v1/orders/:id
//
//	@Summary	One of the caller's orders with lines and payment
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order id"
//	@Success	200	{object}	models.Order
//	@Failure	404	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/orders/{id} [get]
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return respondError(c, err, "Failed to load order")
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /v1/admin/orders/:id/status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	orderID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), orderID, req.Status)
	if err != nil {
		return respondError(c, err, "Failed to update order status")
	}
	return c.JSON(http.StatusOK, order)
}
