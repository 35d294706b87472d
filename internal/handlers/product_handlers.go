package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"depot/internal/common"
	"depot/internal/models"
	"depot/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductHandlers handles HTTP requests for products.
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

type productRequest struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Description *string `json:"description"`
	Unit        string  `json:"unit"`
	Cost        string  `json:"cost"`
}

func (r *productRequest) toModel() (*models.Product, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Product name is required")
	}
	if strings.TrimSpace(r.SKU) == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "SKU is required")
	}

	cost := decimal.Zero
	if r.Cost != "" {
		parsed, err := decimal.NewFromString(r.Cost)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Cost must be a decimal number")
		}
		if parsed.IsNegative() {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Cost cannot be negative")
		}
		cost = parsed
	}

	return &models.Product{
		Name:        strings.TrimSpace(r.Name),
		SKU:         strings.TrimSpace(r.SKU),
		Description: r.Description,
		Unit:        r.Unit,
		Cost:        cost,
	}, nil
}

// CreateProduct handles POST /products.
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product, err := req.toModel()
	if err != nil {
		return err
	}

	if err := h.productService.Create(ctx, product); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id.
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetByID(ctx, id)
	if err != nil {
		return common.SendNotFoundError(c, "Product")
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /products/:id.
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product, err := req.toModel()
	if err != nil {
		return err
	}
	product.ID = id

	if err := h.productService.Update(ctx, product); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id.
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productService.Delete(ctx, id); err != nil {
		return common.SendServerError(c, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListProducts handles GET /products.
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	products, err := h.productService.List(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list products")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}
