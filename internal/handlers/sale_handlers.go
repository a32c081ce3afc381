package handlers

import (
	"net/http"

	"bizflow_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SaleHandler holds the sale service.
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateSaleRequest
	if !bindJSON(c, &req, "CreateSale") {
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), principal, req)
	if err != nil {
		respondServiceError(c, err, "CreateSale: Error from saleService.CreateSale")
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSales supports ?customer_id, ?payment_status, ?start_date and
// ?end_date. Customer callers always get their own sales only.
func (h *SaleHandler) GetSales(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	params := services.SaleListParams{
		CustomerID:    c.Query("customer_id"),
		PaymentStatus: c.Query("payment_status"),
		StartDate:     c.Query("start_date"),
		EndDate:       c.Query("end_date"),
	}

	sales, err := h.saleService.GetSales(c.Request.Context(), principal, params)
	if err != nil {
		respondServiceError(c, err, "GetSales: Error from saleService.GetSales")
		return
	}
	respondList(c, sales)
}

func (h *SaleHandler) GetSaleByID(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSaleByID(c.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(c, err, "GetSaleByID: Error from saleService.GetSaleByID")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// UpdateSale applies an incremental payment and/or new method and notes.
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateSaleRequest
	if !bindJSON(c, &req, "UpdateSale") {
		return
	}

	sale, err := h.saleService.UpdateSale(c.Request.Context(), principal, id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateSale: Error from saleService.UpdateSale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) DeleteSale(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), principal, id); err != nil {
		respondServiceError(c, err, "DeleteSale: Error from saleService.DeleteSale")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
}
