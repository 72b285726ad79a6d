package handlers

import (
	"errors"
	"log"
	"strconv"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// respondError maps service errors onto the error envelope. Anything
// unrecognized is logged and reported as a 500 carrying action.
func respondError(c echo.Context, err error, action string) error {
	var validationErr *services.ValidationError
	var stockErr *services.InsufficientStockError

	switch {
	case errors.As(err, &validationErr):
		return common.SendValidationError(c, validationErr.Field, validationErr.Message)
	case errors.As(err, &stockErr):
		return common.SendStockError(c, stockErr.ProductID, stockErr.ProductName, stockErr.Requested, stockErr.Available)
	case errors.Is(err, services.ErrEmptyCart):
		return common.SendCodedClientError(c, "EMPTY_CART", "Your cart is empty")
	case errors.Is(err, services.ErrInvalidStatusTransition):
		return common.SendCodedClientError(c, "INVALID_STATUS_TRANSITION", err.Error())
	case errors.Is(err, services.ErrProductNotFound):
		return common.SendNotFoundError(c, "Product")
	case errors.Is(err, services.ErrOrderNotFound):
		return common.SendNotFoundError(c, "Order")
	case errors.Is(err, services.ErrCategoryNotFound):
		return common.SendNotFoundError(c, "Category")
	case errors.Is(err, services.ErrImageNotFound):
		return common.SendNotFoundError(c, "Image")
	case errors.Is(err, services.ErrCartItemNotFound):
		return common.SendNotFoundError(c, "Cart item")
	}

	log.Printf("%s: %v", action, err)
	return common.SendServerError(c, action)
}

func currentUser(c echo.Context) (uuid.UUID, bool) {
	return common.GetUserIDFromContext(c.Request().Context())
}

// pathID parses the named path parameter, answering 400 itself on failure
func pathID(c echo.Context, name, field string) (uuid.UUID, bool, error) {
	id, err := common.ValidateUUID(c.Param(name), field)
	if err != nil {
		return uuid.Nil, false, common.SendValidationError(c, field, err.Error())
	}
	return id, true, nil
}

// pagination reads limit/offset query params
func pagination(c echo.Context) (int, int, error) {
	limit, offset := 0, 0
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		l, err := strconv.Atoi(limitParam)
		if err != nil {
			return 0, 0, errors.New("limit must be a number")
		}
		limit = l
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		o, err := strconv.Atoi(offsetParam)
		if err != nil {
			return 0, 0, errors.New("offset must be a number")
		}
		offset = o
	}
	return common.ValidatePaginationParams(limit, offset)
}
