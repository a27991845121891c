package http

import (
	"errors"
	"net/http"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// errorStatuses is consulted in order with errors.Is; a partially applied
// commit also wraps its business cause, so it has to come first.
var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrPartialCommit, http.StatusInternalServerError},
	{domain.ErrInternal, http.StatusInternalServerError},

	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrValidation, http.StatusBadRequest},

	{domain.ErrEmptyAuthorizationHeader, http.StatusUnauthorized},
	{domain.ErrInvalidAuthorizationHeader, http.StatusUnauthorized},
	{domain.ErrInvalidAuthorizationType, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrDataNotFound, http.StatusNotFound},
	{domain.ErrConflictingData, http.StatusConflict},
	{domain.ErrInsufficientStock, http.StatusConflict},
	{domain.ErrInvalidState, http.StatusConflict},
	{domain.ErrCouponInvalid, http.StatusUnprocessableEntity},
}

func errorStatus(err error) (int, bool) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, true
		}
	}
	return http.StatusInternalServerError, false
}

type messageResponse struct {
	Message string `json:"message"`
}

type jsonDecimal decimal.Decimal

func (j jsonDecimal) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(j).String()), nil
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// handleValidationError sends a 400 for a request that could not be parsed
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	h.logger.Debug("bad request", zap.String("path", ctx.FullPath()), zap.Error(err))
	ctx.AbortWithStatusJSON(http.StatusBadRequest, messageResponse{Message: domain.ErrBadRequest.Error() + ": " + err.Error()})
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, ok := errorStatus(err)
	if !ok || statusCode == http.StatusInternalServerError {
		h.logger.Error("error processing request", zap.String("path", ctx.FullPath()), zap.Error(err))
	}
	if !ok {
		err = domain.ErrInternal
	}
	ctx.AbortWithStatusJSON(statusCode, messageResponse{Message: err.Error()})
}

// handleSuccessWithStatus sends data with the specified status code
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}
