package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	notifications, err := h.notifications.List(c.Request.Context(), email, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), email, id.String()); err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"message": "marked read"})
}

// MarkReadByOrder marks every notification about one order as read.
func (h *NotificationHandler) MarkReadByOrder(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	orderID, err := common.ParseUUIDParam(c, "orderId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.notifications.MarkReadByOrder(c.Request.Context(), email, orderID.String()); err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"message": "marked read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	if err := h.notifications.MarkAllRead(c.Request.Context(), email); err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"message": "marked read"})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"unread": count})
}

func (h *NotificationHandler) ClearAll(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	if err := h.notifications.ClearAll(c.Request.Context(), email); err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"message": "cleared"})
}
