package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type WithdrawalHandler struct {
	withdrawals *service.WithdrawalService
}

func NewWithdrawalHandler(withdrawals *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

type withdrawalRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
}

func (h *WithdrawalHandler) Request(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req withdrawalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	w, err := h.withdrawals.Request(c.Request.Context(), email, req.Amount, req.BankName, req.AccountNumber)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, w)
}

func (h *WithdrawalHandler) Mine(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	withdrawals, err := h.withdrawals.ListMine(c.Request.Context(), email, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, withdrawals)
}

func (h *WithdrawalHandler) ListAll(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	withdrawals, err := h.withdrawals.ListAll(c.Request.Context(), role, c.Query("status"), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, withdrawals)
}

func (h *WithdrawalHandler) MarkProcessing(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	w, err := h.withdrawals.MarkProcessing(c.Request.Context(), role, id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, w)
}

func (h *WithdrawalHandler) Complete(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	w, err := h.withdrawals.Complete(c.Request.Context(), role, id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, w)
}

type rejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *WithdrawalHandler) Reject(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req rejectWithdrawalRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	w, err := h.withdrawals.Reject(c.Request.Context(), role, id.String(), req.Reason)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, w)
}
