package handlers

import (
	"net/http"
	"strings"

	"bizflow_backend/internal/services"
	"bizflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler holds the product service.
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateProductRequest
	if !bindJSON(c, &req, "CreateProduct") {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), principal, req)
	if err != nil {
		respondServiceError(c, err, "CreateProduct: Error from productService.CreateProduct")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts supports ?category, ?search and ?available=true.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	params := services.ProductListParams{
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		AvailableOnly: strings.EqualFold(c.Query("available"), "true"),
	}

	products, err := h.productService.GetProducts(c.Request.Context(), principal, params)
	if err != nil {
		respondServiceError(c, err, "GetProducts: Error from productService.GetProducts")
		return
	}
	respondList(c, products)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProductByID(c.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(c, err, "GetProductByID: Error from productService.GetProductByID")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductRequest
	if !bindJSON(c, &req, "UpdateProduct") {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), principal, id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateProduct: Error from productService.UpdateProduct")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), principal, id); err != nil {
		respondServiceError(c, err, "DeleteProduct: Error from productService.DeleteProduct")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// GetStockMovements lists the product's stock ledger; ?limit caps the rows.
func (h *ProductHandler) GetStockMovements(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	limit := utils.StrToIntDefault(c.Query("limit"), 0)

	movements, err := h.productService.GetStockMovements(c.Request.Context(), principal, id, limit)
	if err != nil {
		respondServiceError(c, err, "GetStockMovements: Error from productService.GetStockMovements")
		return
	}
	respondList(c, movements)
}

// AdjustStock applies a manual stock change such as a restock.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.AdjustStockRequest
	if !bindJSON(c, &req, "AdjustStock") {
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), principal, id, req)
	if err != nil {
		respondServiceError(c, err, "AdjustStock: Error from productService.AdjustStock")
		return
	}
	c.JSON(http.StatusOK, product)
}
