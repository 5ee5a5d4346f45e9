package repository

import (
	"context"
	"time"

	"bunah-checkout/internal/model"

	"gorm.io/gorm"
)

type StockRepository interface {
	Decrement(ctx context.Context, ref model.ProductRef, quantity int) error
	Get(ctx context.Context, ref model.ProductRef) (int, error)
}

type stockRepoImpl struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepoImpl{
		db: db,
	}
}

// Decrement applies stock_qty = max(stock_qty - quantity, 0) in a single
// statement so concurrent decrements can never drive stock negative.
func (r *stockRepoImpl) Decrement(ctx context.Context, ref model.ProductRef, quantity int) error {
	if ref.IsZero() {
		return gorm.ErrRecordNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", ref.Key()).
		Updates(map[string]interface{}{
			"stock_qty":  gorm.Expr("CASE WHEN stock_qty > ? THEN stock_qty - ? ELSE 0 END", quantity, quantity),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stockRepoImpl) Get(ctx context.Context, ref model.ProductRef) (int, error) {
	var qty []int
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", ref.Key()).
		Pluck("stock_qty", &qty).
		Error

	if err != nil {
		return 0, err
	}
	if len(qty) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return qty[0], nil
}
