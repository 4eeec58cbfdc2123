package sweeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vjzest/PropCIDBack/internal/services/stories"
)

const DefaultInterval = time.Hour

type ExpiredStore interface {
	ListExpired(ctx context.Context, nowMS int64) ([]stories.Story, error)
	DeleteByID(ctx context.Context, id int64) error
}

type ObjectStorage interface {
	Delete(ctx context.Context, key string) error
}

// Sweeper discovers expired story records on a fixed interval and removes
// their blob and record. Failures are isolated per item: a record whose
// cleanup failed stays in the expired partition and is retried on the next
// tick, which is safe because both deletes are idempotent.
type Sweeper struct {
	store    ExpiredStore
	storage  ObjectStorage
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func New(store ExpiredStore, storage ObjectStorage, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sweeper{
		store:    store,
		storage:  storage,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Run performs a single sweep. It returns an error only when the expired
// batch could not be fetched; per-item failures are logged and swallowed.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	expired, err := s.store.ListExpired(ctx, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("list expired stories: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	removed := 0
	for _, record := range expired {
		if s.sweepOne(ctx, record) {
			removed++
		}
	}

	s.logger.Info("expired story sweep completed",
		zap.Int("expired", len(expired)), zap.Int("removed", removed))
	return nil
}

func (s *Sweeper) sweepOne(ctx context.Context, record stories.Story) bool {
	key := stories.ResolveObjectKey(record)
	if key == "" {
		s.logger.Warn("story media url does not map to an object key, skipping blob delete",
			zap.Int64("story_id", record.ID))
	} else if s.storage != nil {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete expired story blob",
				zap.Error(err), zap.Int64("story_id", record.ID), zap.String("object_key", key))
		}
	}

	if err := s.store.DeleteByID(ctx, record.ID); err != nil {
		s.logger.Warn("failed to delete expired story record, will retry next sweep",
			zap.Error(err), zap.Int64("story_id", record.ID))
		return false
	}
	return true
}

// RunLoop sweeps immediately, then on every interval tick until the context
// is cancelled. A failed sweep never stops the schedule.
func (s *Sweeper) RunLoop(ctx context.Context) {
	if err := s.Run(ctx); err != nil {
		s.logger.Error("story sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				s.logger.Error("story sweep failed", zap.Error(err))
			}
		}
	}
}
