package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ataurwd/vps-backend-server/internal/models"
)

// SettingsRepository reads and writes the singleton settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	if err := r.db.GetContext(ctx, &s, `SELECT * FROM settings WHERE id = 1`); err != nil {
		return nil, fmt.Errorf("settings repository: get: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, registrationFee int64) (*models.Settings, error) {
	var s models.Settings
	err := r.db.GetContext(ctx, &s, `
		UPDATE settings SET registration_fee = $1, updated_at = now()
		WHERE id = 1
		RETURNING *`, registrationFee)
	if err != nil {
		return nil, fmt.Errorf("settings repository: update: %w", err)
	}
	return &s, nil
}
