package handlers

import (
	"net/http"

	"bizflow_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// BusinessHandler serves the caller's business profile.
type BusinessHandler struct {
	businessService services.BusinessService
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(bs services.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: bs}
}

func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	business, err := h.businessService.GetBusiness(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err, "GetBusiness: Error from businessService.GetBusiness")
		return
	}
	c.JSON(http.StatusOK, business)
}

func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.UpdateBusinessRequest
	if !bindJSON(c, &req, "UpdateBusiness") {
		return
	}

	business, err := h.businessService.UpdateBusiness(c.Request.Context(), principal, req)
	if err != nil {
		respondServiceError(c, err, "UpdateBusiness: Error from businessService.UpdateBusiness")
		return
	}
	c.JSON(http.StatusOK, business)
}
