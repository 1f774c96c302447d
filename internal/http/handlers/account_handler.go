package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Me(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	account, err := h.accounts.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, account)
}

func (h *AccountHandler) Balance(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	account, err := h.accounts.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"balance": account.Balance})
}

// BecomeSeller charges the registration fee and upgrades the role.
func (h *AccountHandler) BecomeSeller(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	account, err := h.accounts.BecomeSeller(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, account)
}

type purchasePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

func (h *AccountHandler) PurchasePlan(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req purchasePlanRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	account, err := h.accounts.PurchasePlan(c.Request.Context(), email, req.Plan)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, account)
}
