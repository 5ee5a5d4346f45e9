package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusCompleted = "completed"
)

type Product struct {
	ID          string                     `gorm:"primaryKey;size:64;not null" json:"id"` // uuid or legacy opaque id
	Name        string                     `gorm:"size:255;not null" json:"name"`
	Category    string                     `gorm:"size:128;index;not null" json:"category"`
	Description string                     `json:"description"`
	Price       decimal.Decimal            `gorm:"type:decimal(12,3);not null" json:"price"`
	OldPrice    decimal.NullDecimal        `gorm:"type:decimal(12,3)" json:"oldPrice"`
	SizePrices  map[string]decimal.Decimal `gorm:"serializer:json" json:"sizePrices,omitempty"` // sized categories only
	Images      []string                   `gorm:"serializer:json" json:"image"`
	RoasterName string                     `gorm:"size:128" json:"roasterName"`
	WeightGrams *int                       `json:"weightGrams"`
	InStock     bool                       `gorm:"not null;default:true" json:"inStock"`
	StockQty    int                        `gorm:"not null;default:0" json:"stockQty"`
	CreatedAt   time.Time                  `json:"createdAt"`
	UpdatedAt   time.Time                  `json:"updatedAt"`
}

type Order struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	OrderID          string              `gorm:"size:64;uniqueIndex;not null" json:"orderId"` // client reference id
	Items            []OrderItem         `gorm:"foreignKey:OrderID;references:OrderID" json:"products"`
	Amount           decimal.Decimal     `gorm:"type:decimal(12,3);not null" json:"amount"`
	ShippingFee      decimal.NullDecimal `gorm:"type:decimal(12,3)" json:"shippingFee"`
	CustomerName     string              `gorm:"size:255" json:"customerName"`
	CustomerPhone    string              `gorm:"size:64" json:"customerPhone"`
	Email            string              `gorm:"size:255;index" json:"email"`
	Country          string              `gorm:"size:128" json:"country"`
	Subdivision      string              `gorm:"size:128" json:"wilayat"`
	Description      string              `json:"description"`
	Status           string              `gorm:"size:32;index;not null" json:"status"`
	DepositMode      bool                `gorm:"not null" json:"depositMode"`
	RemainingAmount  decimal.Decimal     `gorm:"type:decimal(12,3);not null" json:"remainingAmount"`
	GiftCard         *GiftCard           `gorm:"serializer:json" json:"giftCard,omitempty"`
	PaymentSessionID string              `gorm:"size:128" json:"paymentSessionId"`
	PaidAt           *time.Time          `json:"paidAt"`
	StockAdjusted    bool                `gorm:"not null" json:"-"` // claimed by the confirmation that decremented stock
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"-"`
	OrderID      string          `gorm:"size:64;index;not null" json:"-"`
	ProductID    string          `gorm:"size:64;index" json:"productId"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Name         string          `gorm:"size:255" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"price"`
	Image        string          `json:"image"`
	Category     string          `gorm:"size:128" json:"category"`
	Measurements map[string]any  `gorm:"serializer:json" json:"measurements"`
	RoasterName  string          `gorm:"size:128" json:"roasterName"`
	GiftCard     *GiftCard       `gorm:"serializer:json" json:"giftCard,omitempty"`
}

// CheckoutDraft is the shared-store row behind the database draft cache.
type CheckoutDraft struct {
	ReferenceID string      `gorm:"primaryKey;size:64;not null"`
	Payload     *OrderDraft `gorm:"serializer:json;not null"`
	ExpiresAt   time.Time   `gorm:"index;not null"`
	CreatedAt   time.Time
}
