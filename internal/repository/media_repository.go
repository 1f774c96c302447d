package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

type MediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(ctx context.Context, m *models.MediaFile) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO media_files (owner_email, file_path, file_type, file_size)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		m.OwnerEmail, m.FilePath, m.FileType, m.FileSize,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("media repository: create: %w", err)
	}
	return nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id string) (*models.MediaFile, error) {
	var m models.MediaFile
	err := r.db.GetContext(ctx, &m, `SELECT * FROM media_files WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("media file not found")
		}
		return nil, fmt.Errorf("media repository: get by id: %w", err)
	}
	return &m, nil
}
