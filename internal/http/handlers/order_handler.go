package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Checkout buys everything in the cart at once.
func (h *OrderHandler) Checkout(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	orders, err := h.orders.Checkout(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, orders)
}

type buyNowRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (h *OrderHandler) BuyNow(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req buyNowRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.BuyNow(c.Request.Context(), email, req.ProductID)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, order)
}

func (h *OrderHandler) Confirm(c *gin.Context) {
	email, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Confirm(c.Request.Context(), email, role, id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	email, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), email, role, id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

func (h *OrderHandler) Refund(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Refund(c.Request.Context(), role, id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	email, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Get(c.Request.Context(), email, role, id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	email, role, ok := identity(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.List(c.Request.Context(), email, role, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, orders)
}

// Sweep triggers one auto-resolution pass immediately. Admin only,
// wired behind the admin route group.
func (h *OrderHandler) Sweep(c *gin.Context) {
	result, err := h.orders.RunSweep(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, result)
}

func identity(c *gin.Context) (email, role string, ok bool) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return "", "", false
	}
	role, err = common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return "", "", false
	}
	return email, role, true
}
