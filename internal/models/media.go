package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaFile describes an uploaded product photo.
type MediaFile struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OwnerEmail string    `db:"owner_email" json:"owner_email"`
	FilePath   string    `db:"file_path" json:"file_path"`
	FileType   string    `db:"file_type" json:"file_type"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
