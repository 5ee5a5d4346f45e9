package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bunah-checkout/internal/dto"
	"bunah-checkout/internal/model"
	"bunah-checkout/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategorySizedHenna is priced per size through Product.SizePrices.
const CategorySizedHenna = "حناء بودر"

type OrderService interface {
	GetOrderWithProducts(ctx context.Context, key string) (*dto.OrderWithProductsResponse, error)
	ListCompleted(ctx context.Context) ([]*model.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*model.Order, error)
	Get(ctx context.Context, key string) (*model.Order, error)
	UpdateStatus(ctx context.Context, key, status string) (*model.Order, error)
	Delete(ctx context.Context, key string) (*model.Order, error)
}

type orderServiceImpl struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderServiceImpl{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (s *orderServiceImpl) GetOrderWithProducts(ctx context.Context, key string) (*dto.OrderWithProductsResponse, error) {
	order, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	products := make([]*dto.OrderProduct, 0, len(order.Items))
	for _, item := range order.Items {
		product, err := s.productRepo.FindByID(ctx, model.ParseProductRef(item.ProductID))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %q: %w", item.ProductID, ErrProductNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("get product %q: %w", item.ProductID, err)
		}

		size := selectedSize(item.Measurements)
		products = append(products, &dto.OrderProduct{
			Product:      *product,
			Quantity:     item.Quantity,
			SelectedSize: size,
			Price:        DisplayPrice(product, item.Quantity, size),
		})
	}

	return &dto.OrderWithProductsResponse{
		Order:    order,
		Products: products,
	}, nil
}

// DisplayPrice is the line total shown to staff: the per-size price for sized
// henna when the size is known, the catalogue price otherwise.
func DisplayPrice(product *model.Product, quantity int, size string) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	if product.Category == CategorySizedHenna && size != "" {
		if p, ok := product.SizePrices[size]; ok {
			return p.Mul(qty).Round(3)
		}
	}
	return product.Price.Mul(qty).Round(3)
}

func selectedSize(measurements map[string]any) string {
	if measurements == nil {
		return ""
	}
	v, ok := measurements["size"]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (s *orderServiceImpl) ListCompleted(ctx context.Context) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListByStatus(ctx, model.OrderStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderServiceImpl) ListByEmail(ctx context.Context, email string) ([]*model.Order, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrOrderNotFound
	}

	orders, err := s.orderRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list orders by email: %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, key string) (*model.Order, error) {
	order, err := s.orderRepo.FindByKey(ctx, strings.TrimSpace(key))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, key, status string) (*model.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, ErrMissingStatus
	}

	order, err := s.orderRepo.UpdateStatus(ctx, strings.TrimSpace(key), status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}

func (s *orderServiceImpl) Delete(ctx context.Context, key string) (*model.Order, error) {
	order, err := s.orderRepo.Delete(ctx, strings.TrimSpace(key))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete order: %w", err)
	}
	return order, nil
}
