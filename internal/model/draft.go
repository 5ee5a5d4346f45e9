package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderDraft is the fully priced order kept in the draft cache between
// session creation and payment confirmation. It never reaches the orders table
// as-is.
type OrderDraft struct {
	ReferenceID     string          `json:"orderId"`
	Items           []LineItemDraft `json:"products"`
	AmountToCharge  decimal.Decimal `json:"amountToCharge"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	Email           string          `json:"email"`
	Country         string          `json:"country"`
	Subdivision     string          `json:"wilayat"`
	GulfCountry     string          `json:"gulfCountry"`
	ShippingMethod  string          `json:"shippingMethod"`
	Description     string          `json:"description"`
	DepositMode     bool            `json:"depositMode"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	GiftCard        *GiftCard       `json:"giftCard,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type LineItemDraft struct {
	ProductID    string          `json:"productId"`
	Quantity     int             `json:"quantity"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	Category     string          `json:"category"`
	Measurements map[string]any  `json:"measurements"`
	RoasterName  string          `json:"roasterName"`
	GiftCard     *GiftCard       `json:"giftCard,omitempty"`
}

// OrderItems converts the cached line items into rows for the given order.
func (d *OrderDraft) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		measurements := it.Measurements
		if measurements == nil {
			measurements = map[string]any{}
		}
		qty := it.Quantity
		if qty < 0 {
			qty = 0
		}
		items = append(items, OrderItem{
			OrderID:      d.ReferenceID,
			ProductID:    it.ProductID,
			Quantity:     qty,
			Name:         it.Name,
			Price:        it.Price,
			Image:        it.Image,
			Category:     it.Category,
			Measurements: measurements,
			RoasterName:  it.RoasterName,
			GiftCard:     it.GiftCard,
		})
	}
	return items
}
