package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type createReportRequest struct {
	OrderID string  `json:"order_id" binding:"required"`
	Reason  string  `json:"reason" binding:"required"`
	Message *string `json:"message"`
}

func (h *ReportHandler) Create(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req createReportRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.Create(c.Request.Context(), email, req.OrderID, req.Reason, req.Message)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, report)
}

func (h *ReportHandler) Get(c *gin.Context) {
	email, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.Get(c.Request.Context(), email, role, id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, report)
}

func (h *ReportHandler) List(c *gin.Context) {
	_, role, ok := identity(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	reports, err := h.reports.List(c.Request.Context(), role, c.Query("status"), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, reports)
}

// ResolveMarkSold closes the report in the seller's favor.
func (h *ReportHandler) ResolveMarkSold(c *gin.Context) {
	h.resolve(c, h.reports.ResolveMarkSold)
}

// ResolveRefund closes the report in the buyer's favor.
func (h *ReportHandler) ResolveRefund(c *gin.Context) {
	h.resolve(c, h.reports.ResolveRefund)
}

func (h *ReportHandler) resolve(c *gin.Context, fn func(ctx context.Context, actorRole, reportID string) (*models.Report, error)) {
	_, role, ok := identity(c)
	if !ok {
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := fn(c.Request.Context(), role, id.String())
	if err != nil {
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, report)
}
