package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
	"github.com/jayanth-org1/Green-Bus-Server/pkg/payment"
)

// respondError maps domain errors onto HTTP status codes. Anything
// unrecognized is a 500 with a generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	var validationErr *payment.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": validationErr.Error(),
			"field":   validationErr.Field,
		})
		return
	}

	var stateErr *models.InvalidStateError
	if errors.As(err, &stateErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_state",
			"message": stateErr.Error(),
		})
		return
	}

	var conflictErr *models.SeatConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "seat_conflict",
			"message":     conflictErr.Error(),
			"seat_number": conflictErr.SeatNumber,
		})
		return
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": notFoundErr.Error(),
		})
		return
	}

	var declineErr *payment.DeclineError
	if errors.As(err, &declineErr) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "payment_declined",
			"message": declineErr.Error(),
			"code":    declineErr.Code,
		})
		return
	}

	var transientErr *payment.TransientError
	if errors.As(err, &transientErr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "gateway_unavailable",
			"message": "The payment gateway did not respond. Please try again.",
		})
		return
	}

	var configErr *payment.ConfigError
	if errors.As(err, &configErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "configuration_error",
			"message": "The payment gateway is not configured",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "An unexpected error occurred",
	})
}
