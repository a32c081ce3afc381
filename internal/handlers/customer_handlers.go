package handlers

import (
	"net/http"

	"bizflow_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer service.
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateCustomerRequest
	if !bindJSON(c, &req, "CreateCustomer") {
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), principal, req)
	if err != nil {
		respondServiceError(c, err, "CreateCustomer: Error from customerService.CreateCustomer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists the business's customers; ?search matches name, phone or email.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	customers, err := h.customerService.GetCustomers(c.Request.Context(), principal, c.Query("search"))
	if err != nil {
		respondServiceError(c, err, "GetCustomers: Error from customerService.GetCustomers")
		return
	}
	respondList(c, customers)
}

func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(c, err, "GetCustomerByID: Error from customerService.GetCustomerByID")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCustomerRequest
	if !bindJSON(c, &req, "UpdateCustomer") {
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), principal, id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateCustomer: Error from customerService.UpdateCustomer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), principal, id); err != nil {
		respondServiceError(c, err, "DeleteCustomer: Error from customerService.DeleteCustomer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
