package handlers

import (
	"net/http"

	"bizflow_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler holds the expense service.
type ExpenseHandler struct {
	expenseService services.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(es services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: es}
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateExpenseRequest
	if !bindJSON(c, &req, "CreateExpense") {
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), principal, req)
	if err != nil {
		respondServiceError(c, err, "CreateExpense: Error from expenseService.CreateExpense")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// GetExpenses supports ?category, ?start_date and ?end_date.
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	params := services.ExpenseListParams{
		Category:  c.Query("category"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	expenses, err := h.expenseService.GetExpenses(c.Request.Context(), principal, params)
	if err != nil {
		respondServiceError(c, err, "GetExpenses: Error from expenseService.GetExpenses")
		return
	}
	respondList(c, expenses)
}

func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(c, err, "GetExpenseByID: Error from expenseService.GetExpenseByID")
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateExpenseRequest
	if !bindJSON(c, &req, "UpdateExpense") {
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), principal, id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateExpense: Error from expenseService.UpdateExpense")
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), principal, id); err != nil {
		respondServiceError(c, err, "DeleteExpense: Error from expenseService.DeleteExpense")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
