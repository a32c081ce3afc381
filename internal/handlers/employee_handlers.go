package handlers

import (
	"net/http"

	"bizflow_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// EmployeeHandler holds the employee service.
type EmployeeHandler struct {
	employeeService services.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(es services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: es}
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req services.CreateEmployeeRequest
	if !bindJSON(c, &req, "CreateEmployee") {
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), principal, req)
	if err != nil {
		respondServiceError(c, err, "CreateEmployee: Error from employeeService.CreateEmployee")
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	employees, err := h.employeeService.GetEmployees(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err, "GetEmployees: Error from employeeService.GetEmployees")
		return
	}
	respondList(c, employees)
}

func (h *EmployeeHandler) GetEmployeeByID(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	employee, err := h.employeeService.GetEmployeeByID(c.Request.Context(), principal, id)
	if err != nil {
		respondServiceError(c, err, "GetEmployeeByID: Error from employeeService.GetEmployeeByID")
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateEmployeeRequest
	if !bindJSON(c, &req, "UpdateEmployee") {
		return
	}

	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), principal, id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateEmployee: Error from employeeService.UpdateEmployee")
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.employeeService.DeleteEmployee(c.Request.Context(), principal, id); err != nil {
		respondServiceError(c, err, "DeleteEmployee: Error from employeeService.DeleteEmployee")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
