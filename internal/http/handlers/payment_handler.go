package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type initializeChargeRequest struct {
	Provider string `json:"provider" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
}

// Initialize starts a hosted checkout and returns the redirect link.
func (h *PaymentHandler) Initialize(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req initializeChargeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, checkoutURL, err := h.payments.InitializeCharge(c.Request.Context(),
		req.Provider, email, req.Name, req.Amount)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, gin.H{
		"reference":    payment.Reference,
		"checkout_url": checkoutURL,
	})
}

// Verify asks the gateway for the outcome of a charge. Called from the
// payment callback page; safe to repeat.
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		common.RespondBadRequest(c, "reference is required")
		return
	}

	payment, err := h.payments.VerifyCharge(c.Request.Context(), reference)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, payment)
}

// Webhook receives gateway deliveries. Signature headers differ per
// provider.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	provider := c.Param("provider")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		common.RespondBadRequest(c, "unreadable body")
		return
	}

	var signature string
	switch provider {
	case models.ProviderFlutterwave:
		signature = c.GetHeader("verif-hash")
	case models.ProviderKorapay:
		signature = c.GetHeader("x-korapay-signature")
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), provider, signature, body); err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"message": "ok"})
}

func (h *PaymentHandler) History(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	payments, err := h.payments.History(c.Request.Context(), email, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, payments)
}
