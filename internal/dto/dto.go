package dto

import (
	"encoding/json"
	"strings"

	"bunah-checkout/internal/model"

	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	ID           string               `json:"_id"`
	ProductID    string               `json:"productId"`
	Name         string               `json:"name"`
	Price        decimal.Decimal      `json:"price"`
	Quantity     int                  `json:"quantity"`
	Category     string               `json:"category"`
	Image        Images               `json:"image"`
	Measurements map[string]any       `json:"measurements"`
	RoasterName  string               `json:"roasterName"`
	GiftCard     *model.GiftCardInput `json:"giftCard"`
}

// Ref prefers the storefront's _id and falls back to productId.
func (i *CheckoutItem) Ref() string {
	if id := strings.TrimSpace(i.ID); id != "" {
		return id
	}
	return strings.TrimSpace(i.ProductID)
}

type CheckoutRequest struct {
	Products       []*CheckoutItem      `json:"products"`
	Email          string               `json:"email"`
	CustomerName   string               `json:"customerName"`
	CustomerPhone  string               `json:"customerPhone"`
	Country        string               `json:"country"`
	Wilayat        string               `json:"wilayat"`
	Description    string               `json:"description"`
	DepositMode    bool                 `json:"depositMode"`
	GiftCard       *model.GiftCardInput `json:"giftCard"`
	GulfCountry    string               `json:"gulfCountry"`
	ShippingMethod string               `json:"shippingMethod"`
}

type CheckoutResponse struct {
	ID                string `json:"id"`
	PaymentLink       string `json:"paymentLink"`
	ClientReferenceID string `json:"client_reference_id"`
}

type ConfirmPaymentRequest struct {
	ClientReferenceID string `json:"client_reference_id"`
}

type OrderResponse struct {
	Order *model.Order `json:"order"`
}

type OrdersResponse struct {
	Message string         `json:"message,omitempty"`
	Orders  []*model.Order `json:"orders"`
}

// OrderProduct is a live product joined with the ordered quantity. Price is
// the display price for the whole line, not the catalogue unit price.
type OrderProduct struct {
	model.Product
	Quantity     int             `json:"quantity"`
	SelectedSize string          `json:"selectedSize,omitempty"`
	Price        decimal.Decimal `json:"price"`
}

type OrderWithProductsResponse struct {
	Order    *model.Order    `json:"order"`
	Products []*OrderProduct `json:"products"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string       `json:"message"`
	Order   *model.Order `json:"order,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Images accepts either a single image url or a list of them.
type Images []string

func (im *Images) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*im = nil
		} else {
			*im = Images{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*im = many
	return nil
}

func (im Images) First() string {
	if len(im) == 0 {
		return ""
	}
	return im[0]
}
