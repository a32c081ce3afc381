package services_test

import (
	"context"
	"errors"
	"testing"

	"bizflow_backend/internal/models"
	"bizflow_backend/internal/services"

	"github.com/google/uuid"
)

func TestCreateExpense_Validation(t *testing.T) {
	// Validation runs before the repository is touched.
	svc := services.NewExpenseService(nil, nil)
	admin := models.Principal{ID: uuid.New(), BusinessID: uuid.New(), Role: models.RoleAdmin}

	tests := []struct {
		name  string
		req   services.CreateExpenseRequest
		field string
	}{
		{"fractional cents", services.CreateExpenseRequest{Category: "RENT", Amount: dec("100.001"), Description: "March"}, "amount"},
		{"negative amount", services.CreateExpenseRequest{Category: "RENT", Amount: dec("-1"), Description: "March"}, "amount"},
		{"unknown category", services.CreateExpenseRequest{Category: "TRAVEL", Amount: dec("1"), Description: "Taxi"}, "category"},
		{"no description", services.CreateExpenseRequest{Category: "OTHER", Amount: dec("1"), Description: "  "}, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(context.Background(), admin, tt.req)
			var verr *services.ValidationError
			if !errors.As(err, &verr) || verr.Fields[tt.field] == "" {
				t.Errorf("err = %v, want a %s field error", err, tt.field)
			}
		})
	}
}
