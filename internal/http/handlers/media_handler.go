package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ataurwd/vps-backend-server/internal/http/handlers/common"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/storage"
)

// MediaStore persists metadata for uploaded files.
type MediaStore interface {
	Create(ctx context.Context, m *models.MediaFile) error
	GetByID(ctx context.Context, id string) (*models.MediaFile, error)
}

type MediaHandler struct {
	media MediaStore
	disk  *storage.PhotoStorage
}

func NewMediaHandler(media MediaStore, disk *storage.PhotoStorage) *MediaHandler {
	return &MediaHandler{media: media, disk: disk}
}

// Upload accepts a multipart photo and returns its media record.
func (h *MediaHandler) Upload(c *gin.Context) {
	email, err := common.CurrentUserEmail(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		common.RespondBadRequest(c, "photo file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondBadRequest(c, "unreadable upload")
		return
	}
	defer src.Close()

	name, mimeType, size, err := h.disk.Save(src)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	record := &models.MediaFile{
		OwnerEmail: email,
		FilePath:   name,
		FileType:   mimeType,
		FileSize:   size,
	}
	if err := h.media.Create(c.Request.Context(), record); err != nil {
		h.disk.Delete(name)
		c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, record)
}

// Serve streams a stored photo.
func (h *MediaHandler) Serve(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	record, err := h.media.GetByID(c.Request.Context(), id.String())
	if err != nil {
		c.Error(err)
		return
	}

	f, err := h.disk.Open(record.FilePath)
	if err != nil {
		c.Error(err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", record.FileType)
	c.File(f.Name())
}
