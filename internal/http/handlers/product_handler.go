package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Price       int64   `json:"price" binding:"required"`
	PhotoID     *string `json:"photo_id"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req createProductRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var photoID *uuid.UUID
	if req.PhotoID != nil {
		parsed, err := uuid.Parse(*req.PhotoID)
		if err != nil {
			common.RespondBadRequest(c, "invalid photo_id")
			return
		}
		photoID = &parsed
	}

	product, err := h.products.CreateListing(c.Request.Context(), email, req.Name, req.Description, req.Price, photoID)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	products, err := h.products.ListActive(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	product, err := h.products.Get(c.Request.Context(), id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, product)
}

// Mine lists all of the caller's own listings.
func (h *ProductHandler) Mine(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	products, err := h.products.ListBySeller(c.Request.Context(), email, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, products)
}

// Queue is the admin moderation queue.
func (h *ProductHandler) Queue(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	status := c.DefaultQuery("status", "pending")
	limit, offset := common.GetPagination(c)
	products, err := h.products.ListByStatus(c.Request.Context(), role, status, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, products)
}

type moderateRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

func (h *ProductHandler) Moderate(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req moderateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	product, err := h.products.Moderate(c.Request.Context(), role, id.String(), *req.Approve)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, product)
}
