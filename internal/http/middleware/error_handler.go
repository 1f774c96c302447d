package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

var sentinelStatus = map[error]int{
	apperror.ErrAccountNotFound:     http.StatusNotFound,
	apperror.ErrAccountExists:       http.StatusConflict,
	apperror.ErrInvalidCredentials:  http.StatusUnauthorized,
	apperror.ErrInsufficientFunds:   http.StatusPaymentRequired,
	apperror.ErrNoCredit:            http.StatusPaymentRequired,
	apperror.ErrProductNotFound:     http.StatusNotFound,
	apperror.ErrProductUnavailable:  http.StatusConflict,
	apperror.ErrOrderNotFound:       http.StatusNotFound,
	apperror.ErrInvalidTransition:   http.StatusConflict,
	apperror.ErrReportNotFound:      http.StatusNotFound,
	apperror.ErrReportResolved:      http.StatusConflict,
	apperror.ErrCartEmpty:           http.StatusBadRequest,
	apperror.ErrWithdrawalNotFound:  http.StatusNotFound,
	apperror.ErrPaymentNotFound:     http.StatusNotFound,
	apperror.ErrDuplicatePayment:    http.StatusConflict,
	apperror.ErrForbidden:           http.StatusForbidden,
	apperror.ErrNotSeller:           http.StatusForbidden,
	apperror.ErrInvalidSignature:    http.StatusUnauthorized,
	apperror.ErrSessionNotFound:     http.StatusUnauthorized,
	apperror.ErrInvalidReferralCode: http.StatusBadRequest,
}

// ErrorHandler turns errors attached to the context into JSON
// responses. Sentinels map to their status; AppErrors carry their own;
// anything else is masked as an internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		message := "internal server error"

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status = appErr.HTTPStatus
			message = appErr.Message
		} else {
			for sentinel, code := range sentinelStatus {
				if errors.Is(err, sentinel) {
					status = code
					message = sentinel.Error()
					break
				}
			}
		}

		entry := logger.Log.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.WithError(err).Error("request failed")
		} else {
			entry.WithError(err).Debug("request rejected")
		}

		c.JSON(status, gin.H{"error": message})
	}
}
