package repository

import (
	"context"

	"bunah-checkout/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, ref model.ProductRef) (*model.Product, error)
	FindMany(ctx context.Context, refs []model.ProductRef) ([]*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, ref model.ProductRef) (*model.Product, error) {
	if ref.IsZero() {
		return nil, gorm.ErrRecordNotFound
	}

	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", ref.Key()).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindMany(ctx context.Context, refs []model.ProductRef) ([]*model.Product, error) {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		if !ref.IsZero() {
			keys = append(keys, ref.Key())
		}
	}

	var products []*model.Product
	if len(keys) == 0 {
		return products, nil
	}

	err := r.db.WithContext(ctx).
		Where("id IN ?", keys).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}
