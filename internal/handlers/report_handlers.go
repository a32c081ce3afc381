package handlers

import (
	"net/http"

	"bizflow_backend/internal/services"
	"bizflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard and analytics endpoints.
type ReportHandler struct {
	analyticsService services.AnalyticsService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(as services.AnalyticsService) *ReportHandler {
	return &ReportHandler{analyticsService: as}
}

// GetDashboardSummary is scoped to the caller's own sales for staff.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.GetDashboard(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err, "GetDashboardSummary: Error from analyticsService.GetDashboard")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRevenueByPeriod reads ?period=daily|weekly|monthly and ?days=N.
func (h *ReportHandler) GetRevenueByPeriod(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	period := c.DefaultQuery("period", "daily")
	days := utils.StrToIntDefault(c.Query("days"), 0)

	buckets, err := h.analyticsService.GetRevenueByPeriod(c.Request.Context(), principal, period, days)
	if err != nil {
		respondServiceError(c, err, "GetRevenueByPeriod: Error from analyticsService.GetRevenueByPeriod")
		return
	}
	respondList(c, buckets)
}

func (h *ReportHandler) GetTopCustomers(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	customers, err := h.analyticsService.GetTopCustomers(c.Request.Context(), principal, utils.StrToIntDefault(c.Query("limit"), 0))
	if err != nil {
		respondServiceError(c, err, "GetTopCustomers: Error from analyticsService.GetTopCustomers")
		return
	}
	respondList(c, customers)
}

func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	products, err := h.analyticsService.GetTopProducts(c.Request.Context(), principal, utils.StrToIntDefault(c.Query("limit"), 0))
	if err != nil {
		respondServiceError(c, err, "GetTopProducts: Error from analyticsService.GetTopProducts")
		return
	}
	respondList(c, products)
}

func (h *ReportHandler) GetExpensesByCategory(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	totals, err := h.analyticsService.GetExpensesByCategory(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err, "GetExpensesByCategory: Error from analyticsService.GetExpensesByCategory")
		return
	}
	respondList(c, totals)
}
