package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type CartHandler struct {
	cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type addToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (h *CartHandler) Add(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req addToCartRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.cart.Add(c.Request.Context(), email, req.ProductID)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, item)
}

func (h *CartHandler) List(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	items, total, err := h.cart.List(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *CartHandler) Remove(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	id, err := common.ParseUUIDParam(c, "productId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.cart.Remove(c.Request.Context(), email, id.String()); err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"message": "removed"})
}

func (h *CartHandler) Clear(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	if err := h.cart.Clear(c.Request.Context(), email); err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"message": "cart cleared"})
}
