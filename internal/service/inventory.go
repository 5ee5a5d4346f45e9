package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"bunah-checkout/internal/model"
	"bunah-checkout/internal/repository"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type InventoryService interface {
	Decrement(ctx context.Context, ref model.ProductRef, quantity int) error
	// DecrementItems adjusts stock for every line item independently. Failures
	// are logged and returned, one entry per failed item.
	DecrementItems(ctx context.Context, items []model.OrderItem) []error
}

type inventoryServiceImpl struct {
	stockRepo   repository.StockRepository
	concurrency int
	logger      *slog.Logger
}

func NewInventoryService(stockRepo repository.StockRepository, concurrency int, logger *slog.Logger) InventoryService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &inventoryServiceImpl{
		stockRepo:   stockRepo,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (s *inventoryServiceImpl) Decrement(ctx context.Context, ref model.ProductRef, quantity int) error {
	if quantity <= 0 {
		return nil
	}

	err := s.stockRepo.Decrement(ctx, ref, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("decrement %q: %w", ref.String(), ErrProductNotFound)
	}
	if err != nil {
		return fmt.Errorf("decrement %q: %w", ref.String(), err)
	}
	return nil
}

func (s *inventoryServiceImpl) DecrementItems(ctx context.Context, items []model.OrderItem) []error {
	var (
		mu   sync.Mutex
		errs []error
	)

	// the group never sees an error so one failed item cannot cancel the rest
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, item := range items {
		ref := model.ParseProductRef(item.ProductID)
		if ref.IsZero() || item.Quantity <= 0 {
			continue
		}
		qty := item.Quantity

		g.Go(func() error {
			if err := s.Decrement(ctx, ref, qty); err != nil {
				s.logger.Error("stock_decrement_failed",
					"product_id", ref.String(),
					"quantity", qty,
					"error", err,
				)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errs
}
