package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, settings)
}

type updateSettingsRequest struct {
	RegistrationFee *int64 `json:"registration_fee" binding:"required"`
}

func (h *SettingsHandler) Update(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}

	var req updateSettingsRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), role, *req.RegistrationFee)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, settings)
}
