package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"bunah-checkout/internal/cache"
	"bunah-checkout/internal/client"
	"bunah-checkout/internal/dto"
	"bunah-checkout/internal/model"
	"bunah-checkout/internal/pricing"

	"github.com/oklog/ulid/v2"
)

const (
	sessionModePayment = "payment"
	metadataSource     = "bunah-checkout"

	defaultMetaEmail       = "غير محدد"
	defaultMetaDescription = "لا يوجد وصف"
)

// IDGenerator mints client reference ids.
type IDGenerator func() string

func NewULID() string {
	return ulid.Make().String()
}

type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

type checkoutServiceImpl struct {
	engine        *pricing.Engine
	drafts        cache.DraftStore
	thawaniClient client.ThawaniClient
	successURL    string
	cancelURL     string
	newID         IDGenerator
	now           func() time.Time
	logger        *slog.Logger
}

func NewCheckoutService(
	engine *pricing.Engine,
	drafts cache.DraftStore,
	thawaniClient client.ThawaniClient,
	successURL string,
	cancelURL string,
	newID IDGenerator,
	logger *slog.Logger,
) CheckoutService {
	if newID == nil {
		newID = NewULID
	}
	return &checkoutServiceImpl{
		engine:        engine,
		drafts:        drafts,
		thawaniClient: thawaniClient,
		successURL:    successURL,
		cancelURL:     cancelURL,
		newID:         newID,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *checkoutServiceImpl) CreateCheckoutSession(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if req == nil || len(req.Products) == 0 {
		return nil, ErrEmptyCart
	}

	cart := make([]pricing.CartItem, 0, len(req.Products))
	for _, p := range req.Products {
		if p == nil {
			return nil, ErrEmptyCart
		}
		cart = append(cart, pricing.CartItem{
			ProductID: p.Ref(),
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  p.Quantity,
			Category:  p.Category,
		})
	}

	dest := pricing.Destination{
		Country:        req.Country,
		GulfCountry:    req.GulfCountry,
		ShippingMethod: req.ShippingMethod,
	}
	quote, err := s.engine.Quote(cart, dest, req.DepositMode)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}

	ref := s.newID()
	draft := s.buildDraft(ref, req, quote)
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("cache draft: %w", err)
	}

	created, err := s.thawaniClient.CreateSession(ctx, s.buildSessionRequest(ref, req, quote))
	if err != nil {
		if delErr := s.drafts.Delete(ctx, ref); delErr != nil {
			s.logger.Error("draft_cleanup_failed", "reference_id", ref, "error", delErr)
		}
		s.logger.Error("checkout_session_failed", "reference_id", ref, "error", err)
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.Info("checkout_session_created",
		"reference_id", ref,
		"session_id", created.SessionID,
		"amount", quote.AmountToCharge.StringFixed(3),
		"deposit_mode", quote.DepositMode,
	)

	return &dto.CheckoutResponse{
		ID:                created.SessionID,
		PaymentLink:       s.thawaniClient.PaymentLink(created.SessionID),
		ClientReferenceID: ref,
	}, nil
}

func (s *checkoutServiceImpl) buildDraft(ref string, req *dto.CheckoutRequest, quote *pricing.Quote) *model.OrderDraft {
	items := make([]model.LineItemDraft, 0, len(req.Products))
	for _, p := range req.Products {
		measurements := p.Measurements
		if measurements == nil {
			measurements = map[string]any{}
		}
		items = append(items, model.LineItemDraft{
			ProductID:    p.Ref(),
			Quantity:     p.Quantity,
			Name:         p.Name,
			Price:        p.Price,
			Image:        p.Image.First(),
			Category:     p.Category,
			Measurements: measurements,
			RoasterName:  p.RoasterName,
			GiftCard:     model.NormalizeGiftCard(p.GiftCard),
		})
	}

	return &model.OrderDraft{
		ReferenceID:     ref,
		Items:           items,
		AmountToCharge:  quote.AmountToCharge,
		ShippingFee:     quote.ShippingFee,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Email:           req.Email,
		Country:         req.Country,
		Subdivision:     req.Wilayat,
		GulfCountry:     req.GulfCountry,
		ShippingMethod:  req.ShippingMethod,
		Description:     req.Description,
		DepositMode:     quote.DepositMode,
		RemainingAmount: quote.RemainingAmount,
		GiftCard:        model.NormalizeGiftCard(req.GiftCard),
		CreatedAt:       s.now(),
	}
}

// buildSessionRequest keeps gift text, images and measurements out of the
// gateway metadata; they live only in the cached draft.
func (s *checkoutServiceImpl) buildSessionRequest(ref string, req *dto.CheckoutRequest, quote *pricing.Quote) *model.CreateSessionRequest {
	products := make([]model.SessionProduct, 0, len(quote.Lines))
	for _, l := range quote.Lines {
		products = append(products, model.SessionProduct{
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitAmount: l.UnitAmount,
		})
	}

	return &model.CreateSessionRequest{
		ClientReferenceID: ref,
		Mode:              sessionModePayment,
		Products:          products,
		SuccessURL:        withReference(s.successURL, ref),
		CancelURL:         s.cancelURL,
		Metadata: map[string]string{
			"email":             orDefault(req.Email, defaultMetaEmail),
			"customer_name":     req.CustomerName,
			"customer_phone":    req.CustomerPhone,
			"country":           req.Country,
			"wilayat":           req.Wilayat,
			"gulf_country":      req.GulfCountry,
			"shipping_method":   req.ShippingMethod,
			"description":       orDefault(req.Description, defaultMetaDescription),
			"shippingFee":       quote.ShippingFee.String(),
			"internal_order_id": ref,
			"source":            metadataSource,
		},
	}
}

func withReference(rawURL, ref string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("client_reference_id", ref)
	u.RawQuery = q.Encode()
	return u.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
