package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req sendMessageRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	msg, err := h.chat.Send(c.Request.Context(), email, orderID.String(), req.Body)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, msg)
}

func (h *ChatHandler) ListByOrder(c *gin.Context) {
	email, role, ok := identity(c)
	if !ok {
		return
	}
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	messages, err := h.chat.ListByOrder(c.Request.Context(), email, role, orderID.String(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, messages)
}
