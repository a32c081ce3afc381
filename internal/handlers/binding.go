package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"bizflow_backend/internal/models"
	"bizflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators configures gin's validator: field errors are reported
// under their JSON names and the expense_category tag is available.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("expense_category", func(fl validator.FieldLevel) bool {
			return models.ExpenseCategory(strings.ToUpper(strings.TrimSpace(fl.Field().String()))).Valid()
		}); err != nil {
			utils.LogError(err, "RegisterValidators: expense_category")
		}
	})
}

// bindJSON decodes and validates the body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}, op string) bool {
	RegisterValidators()
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.RespondWithError(c, utils.NewValidationAPIError(fieldMessages(validationErrs)))
		return false
	}

	utils.LogDebug(op+": failed to bind JSON", map[string]interface{}{"error": err.Error()})
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		utils.RespondWithError(c, utils.NewValidationAPIError(map[string]string{typeErr.Field: "has the wrong type"}))
	case errors.As(err, &syntaxErr):
		utils.RespondValidationFailed(c, "Request body is not valid JSON")
	default:
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error())
	}
	return false
}

// fieldMessages turns validator errors into {"items[0].quantity": "..."}.
func fieldMessages(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		name := fe.Namespace()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		if _, exists := fields[name]; !exists {
			fields[name] = fieldMessage(fe)
		}
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "expense_category":
		return "must be one of RENT, UTILITIES, INVENTORY, SALARY, MARKETING, MAINTENANCE, OTHER"
	}
	return fmt.Sprintf("failed the %s check", fe.Tag())
}
