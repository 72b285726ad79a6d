package handlers

import (
	"net/http"
	"strings"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductHandlers serves the public catalog and the admin product endpoints
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// ProductRequest is the admin create/update body
type ProductRequest struct {
	Name          string              `json:"name"`
	Description   *string             `json:"description"`
	CategoryID    *string             `json:"category_id"`
	UnitPrice     decimal.Decimal     `json:"unit_price" swaggertype:"string"`
	SalePrice     decimal.NullDecimal `json:"sale_price" swaggertype:"string"`
	StockQuantity int                 `json:"stock_quantity"`
	IsActive      *bool               `json:"is_active,omitempty"`
}

func (r *ProductRequest) toProduct() (*models.Product, error) {
	product := &models.Product{
		Name:          strings.TrimSpace(r.Name),
		Description:   r.Description,
		UnitPrice:     r.UnitPrice,
		SalePrice:     r.SalePrice,
		StockQuantity: r.StockQuantity,
		IsActive:      r.IsActive == nil || *r.IsActive,
	}
	if r.CategoryID != nil && *r.CategoryID != "" {
		categoryID, err := common.ValidateUUID(*r.CategoryID, "category_id")
		if err != nil {
			return nil, err
		}
		product.CategoryID = &categoryID
	}
	return product, nil
}

// ListProducts handles GET /v1/products
//
//	@Summary	List or search active products
//	@Tags		catalog
//	@Produce	json
//	@Param		q			query	string	false	"Search text"
//	@Param		category_id	query	string	false	"Category id"
//	@Param		limit		query	int		false	"Page size"
//	@Param		offset		query	int		false	"Page offset"
//	@Success	200			{object}	map[string]interface{}
//	@Router		/v1/products [get]
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	limit, offset, err := pagination(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	filter := &models.ProductFilter{
		Query:  c.QueryParam("q"),
		Limit:  limit,
		Offset: offset,
	}
	if categoryParam := c.QueryParam("category_id"); categoryParam != "" {
		categoryID, err := common.ValidateUUID(categoryParam, "category_id")
		if err != nil {
			return common.SendValidationError(c, "category_id", err.Error())
		}
		filter.CategoryID = &categoryID
	}

	products, err := h.productService.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err, "Failed to list products")
	}
	if products == nil {
		products = []*models.Product{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProduct handles GET /v1/products/:id
//
//	@Summary	Product detail with effective price and image URLs
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		string	true	"Product id"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	common.ErrorResponse
//	@Router		/v1/products/{id} [get]
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	productID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}

	product, err := h.productService.GetByID(c.Request().Context(), productID)
	if err != nil {
		return respondError(c, err, "Failed to load product")
	}
	return c.JSON(http.StatusOK, newProductResponse(product))
}

// ProductResponse adds the price a buyer pays today
type ProductResponse struct {
	*models.Product
	EffectivePrice decimal.Decimal `json:"effective_price" swaggertype:"string"`
}

func newProductResponse(product *models.Product) ProductResponse {
	return ProductResponse{Product: product, EffectivePrice: product.EffectivePrice()}
}

// CreateProduct handles POST /v1/admin/products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	product, err := req.toProduct()
	if err != nil {
		return common.SendValidationError(c, "category_id", err.Error())
	}

	if err := h.productService.Create(c.Request().Context(), product); err != nil {
		return respondError(c, err, "Failed to create product")
	}
	return c.JSON(http.StatusCreated, newProductResponse(product))
}

// UpdateProduct handles PUT /v1/admin/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	productID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	product, err := req.toProduct()
	if err != nil {
		return common.SendValidationError(c, "category_id", err.Error())
	}
	product.ID = productID

	if err := h.productService.Update(c.Request().Context(), product); err != nil {
		return respondError(c, err, "Failed to update product")
	}
	return c.JSON(http.StatusOK, newProductResponse(product))
}

// DeleteProduct handles DELETE /v1/admin/products/:id. The product is
// deactivated so past orders keep their references.
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	productID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}

	if err := h.productService.Delete(c.Request().Context(), productID); err != nil {
		return respondError(c, err, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles POST /v1/admin/products/:id/images (multipart field "image")
func (h *ProductHandlers) UploadImage(c echo.Context) error {
	productID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "image file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendClientError(c, "Unable to read uploaded file")
	}
	defer file.Close()

	altText := common.OptionalString(c.FormValue("alt_text"))
	image, err := h.productService.UploadProductImage(c.Request().Context(), productID, fileHeader.Filename,
		fileHeader.Header.Get(echo.HeaderContentType), file, fileHeader.Size, altText)
	if err != nil {
		return respondError(c, err, "Failed to upload image")
	}
	return c.JSON(http.StatusCreated, image)
}

// DeleteImage handles DELETE /v1/admin/images/:id
func (h *ProductHandlers) DeleteImage(c echo.Context) error {
	imageID, ok, err := pathID(c, "id", "id")
	if !ok {
		return err
	}
	if err := h.productService.DeleteProductImage(c.Request().Context(), imageID); err != nil {
		return respondError(c, err, "Failed to delete image")
	}
	return c.NoContent(http.StatusNoContent)
}
