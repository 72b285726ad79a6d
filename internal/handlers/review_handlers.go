package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

type ReviewHandlers struct {
	reviewService services.ReviewService
}

func NewReviewHandlers(reviewService services.ReviewService) *ReviewHandlers {
	return &ReviewHandlers{reviewService: reviewService}
}

type SubmitReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// ListReviews handles GET /v1/products/:id/reviews
//
//	@Summary	Reviews of a product with the average rating
//	@Tags		reviews
//	@Produce	json
//	@Param		id	path		string	true	"Product id"
//	@Success	200	{object}	models.ReviewSummary
//	@Router		/v1/products/{id}/reviews [get]
func (h *ReviewHandlers) ListReviews(c echo.Context) error {
	productID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}
	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	summary, err := h.reviewService.List(c.Request().Context(), productID, limit, offset)
	if err != nil {
		return respondError(c, err, "Failed to list reviews")
	}
	return c.JSON(http.StatusOK, summary)
}

// SubmitReview handles POST /v1/products/:id/reviews
func (h *ReviewHandlers) SubmitReview(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	productID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}

	var req SubmitReviewRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	review, err := h.reviewService.Submit(c.Request().Context(), userID, productID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err, "Failed to save review")
	}
	return c.JSON(http.StatusOK, review)
}
