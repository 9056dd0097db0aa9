package handlers

import (
	"errors"
	"net/http"

	"github.com/vladbogun1/tg-shop-miniapp/internal/dto"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError переводит сентинельные ошибки сервисов в HTTP-статусы.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrVariantNotFound),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrPromoNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, service.ErrTagAlreadyExists),
		errors.Is(err, service.ErrPromoCodeAlreadyExists):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrQuantityInvalid),
		errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrVariantRequired),
		errors.Is(err, service.ErrVariantNotAllowed),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrPromoInactive),
		errors.Is(err, service.ErrPromoLimitReached),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrTrackingNumberRequired):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError(err.Error()))
	default:
		log.Error("Необработанная ошибка сервиса", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}
