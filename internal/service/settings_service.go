package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/ataurwd/vps-backend-server/internal/cache"
	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, registrationFee int64) (*models.Settings, error)
}

// SettingsService reads the singleton settings row through a short
// redis cache. Updates invalidate the cache.
type SettingsService struct {
	store SettingsStore
	redis *redis.Client
}

func NewSettingsService(store SettingsStore, client *redis.Client) *SettingsService {
	return &SettingsService{store: store, redis: client}
}

func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, cache.SettingsKey()).Bytes()
		if err == nil {
			var settings models.Settings
			if json.Unmarshal(raw, &settings) == nil {
				return &settings, nil
			}
		}
	}

	settings, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(settings); err == nil {
			if err := s.redis.Set(ctx, cache.SettingsKey(), raw, cache.SettingsTTL).Err(); err != nil {
				logger.Log.WithError(err).Warn("settings cache set failed")
			}
		}
	}
	return settings, nil
}

// Update changes the seller registration fee. Admin only.
func (s *SettingsService) Update(ctx context.Context, actorRole string, registrationFee int64) (*models.Settings, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	if registrationFee < 0 {
		return nil, apperror.BadRequest("registration fee cannot be negative")
	}

	settings, err := s.store.Update(ctx, registrationFee)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, cache.SettingsKey()).Err(); err != nil {
			logger.Log.WithError(err).Warn("settings cache invalidation failed")
		}
	}
	return settings, nil
}
