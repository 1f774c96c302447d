package service

import (
	"context"
	"time"

	"github.com/ataurwd/vps-backend-server/internal/logger"
)

// Sweeper runs the auto-resolution sweep on a fixed interval until the
// context is cancelled.
type Sweeper struct {
	orders   *OrderService
	interval time.Duration
}

func NewSweeper(orders *OrderService, interval time.Duration) *Sweeper {
	return &Sweeper{orders: orders, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Log.WithField("interval", s.interval.String()).Info("sweeper started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.orders.RunSweep(ctx); err != nil {
				logger.Log.WithError(err).Error("sweep failed")
			}
		}
	}
}
