package handlers

import (
	"errors"
	"net/http"

	"bizflow_backend/internal/middleware"
	"bizflow_backend/internal/models"
	"bizflow_backend/internal/services"
	"bizflow_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const notificationFailedMessage = "Password changed, but the notification could not be delivered"

// respondServiceError maps a service error onto the API error envelope.
// Anything outside the known classes is logged and reported as a generic 500.
func respondServiceError(c *gin.Context, err error, op string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.RespondWithError(c, utils.NewValidationAPIError(validationErr.Fields))
	case errors.Is(err, services.ErrNotificationFailed):
		utils.LogError(err, op+": notification failed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeNotificationFailed, notificationFailedMessage, ""))
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
	case errors.Is(err, services.ErrUnauthenticated):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), ""))
	default:
		utils.LogError(err, op)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error", ""))
	}
}

// currentPrincipal reads the principal set by the auth middleware.
func currentPrincipal(c *gin.Context) (models.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", ""))
		return models.Principal{}, false
	}
	return *principal, true
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+name+" format", err.Error()))
		return uuid.Nil, false
	}
	return id, true
}

// respondList writes the list envelope; a nil slice is sent as [].
func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "count": len(items)})
}
