package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bunah-checkout/internal/config"
	"bunah-checkout/internal/model"

	"gorm.io/gorm"
)

const (
	DriverMemory   = "memory"
	DriverDatabase = "database"
)

// DraftStore holds priced drafts between session creation and payment
// confirmation, keyed by reference id.
type DraftStore interface {
	Put(ctx context.Context, draft *model.OrderDraft) error
	Get(ctx context.Context, referenceID string) (*model.OrderDraft, bool, error)
	Delete(ctx context.Context, referenceID string) error
	// Sweep removes expired drafts and reports how many were dropped.
	Sweep(ctx context.Context) (int, error)
}

func NewDraftStore(cfg config.Cache, db *gorm.DB) (DraftStore, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(cfg.TTL), nil
	case DriverDatabase:
		if db == nil {
			return nil, fmt.Errorf("draft store driver %q needs a database", cfg.Driver)
		}
		return NewDBStore(db, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown draft store driver %q", cfg.Driver)
	}
}

// RunSweeper reclaims abandoned drafts until ctx is cancelled.
func RunSweeper(ctx context.Context, store DraftStore, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := store.Sweep(ctx)
			if err != nil {
				logger.Error("draft_sweep_failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("draft_sweep", "removed", n)
			}
		}
	}
}
