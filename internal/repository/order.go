package repository

import (
	"context"
	"strconv"
	"time"

	"bunah-checkout/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	// FindByOrderID looks an order up by its client reference id.
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	// FindByKey accepts the reference id or, failing that, the numeric row id.
	FindByKey(ctx context.Context, key string) (*model.Order, error)
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	Update(ctx context.Context, tx *gorm.DB, order *model.Order, replaceItems bool) error
	ClaimStockAdjustment(ctx context.Context, orderID string) (bool, error)
	ListByStatus(ctx context.Context, status string) ([]*model.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, key, status string) (*model.Order, error)
	Delete(ctx context.Context, key string) (*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

// resolveKey maps an admin key to a row id. A matching reference id wins over
// a numeric row id, so all-digit reference ids stay reachable.
func resolveKey(db *gorm.DB, key string) (uint, error) {
	var ids []uint
	err := db.Model(&model.Order{}).
		Where("order_id = ?", key).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 1 {
		return ids[0], nil
	}

	id, err := strconv.ParseUint(key, 10, 64)
	if err != nil {
		return 0, gorm.ErrRecordNotFound
	}
	return uint(id), nil
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := preloadItems(r.db.WithContext(ctx)).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByKey(ctx context.Context, key string) (*model.Order, error) {
	db := r.db.WithContext(ctx)
	id, err := resolveKey(db, key)
	if err != nil {
		return nil, err
	}

	var order model.Order
	if err := preloadItems(db).First(&order, id).Error; err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	return r.createItems(ctx, tx, order)
}

// Update saves every column except the stock claim, which only
// ClaimStockAdjustment may flip.
func (r *orderRepoImpl) Update(ctx context.Context, tx *gorm.DB, order *model.Order, replaceItems bool) error {
	err := tx.WithContext(ctx).
		Omit(clause.Associations, "StockAdjusted").
		Save(order).Error
	if err != nil {
		return err
	}

	if !replaceItems {
		return nil
	}

	err = tx.WithContext(ctx).
		Where("order_id = ?", order.OrderID).
		Delete(&model.OrderItem{}).Error
	if err != nil {
		return err
	}
	return r.createItems(ctx, tx, order)
}

func (r *orderRepoImpl) createItems(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].ID = 0
		order.Items[i].OrderID = order.OrderID
	}
	return tx.WithContext(ctx).Create(&order.Items).Error
}

// ClaimStockAdjustment flips stock_adjusted from false to true. Exactly one
// caller per order observes true.
func (r *orderRepoImpl) ClaimStockAdjustment(ctx context.Context, orderID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("order_id = ? AND stock_adjusted = ?", orderID, false).
		Updates(map[string]interface{}{
			"stock_adjusted": true,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepoImpl) ListByStatus(ctx context.Context, status string) ([]*model.Order, error) {
	var orders []*model.Order
	err := preloadItems(r.db.WithContext(ctx)).
		Where("status = ?", status).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListByEmail(ctx context.Context, email string) ([]*model.Order, error) {
	var orders []*model.Order
	err := preloadItems(r.db.WithContext(ctx)).
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, key, status string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := resolveKey(tx, key)
		if err != nil {
			return err
		}

		result := tx.Model(&model.Order{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": time.Now(),
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return preloadItems(tx).First(&order, id).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) Delete(ctx context.Context, key string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := resolveKey(tx, key)
		if err != nil {
			return err
		}
		if err := preloadItems(tx).First(&order, id).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.OrderID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Order{}, order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}
