package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bunah-checkout/internal/cache"
	"bunah-checkout/internal/client"
	"bunah-checkout/internal/model"
	"bunah-checkout/internal/pricing"
	"bunah-checkout/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentService interface {
	// ConfirmPayment reconciles a paid gateway session with the orders table
	// and adjusts stock exactly once per reference id.
	ConfirmPayment(ctx context.Context, referenceID string) (*model.Order, error)
}

type paymentServiceImpl struct {
	db            *gorm.DB
	thawaniClient client.ThawaniClient
	orderRepo     repository.OrderRepository
	drafts        cache.DraftStore
	engine        *pricing.Engine
	inventory     InventoryService
	pageSize      int
	maxPages      int
	now           func() time.Time
	logger        *slog.Logger
}

func NewPaymentService(
	db *gorm.DB,
	thawaniClient client.ThawaniClient,
	orderRepo repository.OrderRepository,
	drafts cache.DraftStore,
	engine *pricing.Engine,
	inventory InventoryService,
	pageSize int,
	maxPages int,
	logger *slog.Logger,
) PaymentService {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPages <= 0 {
		maxPages = 1
	}
	return &paymentServiceImpl{
		db:            db,
		thawaniClient: thawaniClient,
		orderRepo:     orderRepo,
		drafts:        drafts,
		engine:        engine,
		inventory:     inventory,
		pageSize:      pageSize,
		maxPages:      maxPages,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *paymentServiceImpl) ConfirmPayment(ctx context.Context, referenceID string) (*model.Order, error) {
	ref := strings.TrimSpace(referenceID)
	if ref == "" {
		return nil, ErrMissingReference
	}

	sessionID, err := s.findSession(ctx, ref)
	if err != nil {
		return nil, err
	}

	session, err := s.thawaniClient.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if session.PaymentStatus != model.PaymentStatusPaid {
		s.logger.Info("payment_not_paid",
			"reference_id", ref,
			"session_id", sessionID,
			"payment_status", session.PaymentStatus,
		)
		return nil, ErrPaymentNotSuccessful
	}

	meta := parseGatewayMeta(session.Meta())

	draft, found, err := s.drafts.Get(ctx, ref)
	if err != nil {
		// the gateway metadata is enough to persist the order
		s.logger.Warn("draft_lookup_failed", "reference_id", ref, "error", err)
	}
	if !found {
		draft = nil
	}

	paid := s.engine.FromMinor(session.TotalAmount)

	order, err := s.upsert(ctx, ref, sessionID, paid, draft, meta)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent confirmation created the row first
		order, err = s.upsert(ctx, ref, sessionID, paid, draft, meta)
	}
	if err != nil {
		return nil, fmt.Errorf("save order %s: %w", ref, err)
	}

	s.adjustStock(ctx, order)

	if err := s.drafts.Delete(ctx, ref); err != nil {
		s.logger.Error("draft_delete_failed", "reference_id", ref, "error", err)
	}

	s.logger.Info("payment_confirmed",
		"reference_id", ref,
		"session_id", sessionID,
		"amount", order.Amount.StringFixed(3),
	)

	return order, nil
}

// findSession maps a reference id to the gateway's session id. The gateway
// has no lookup by reference, so recent sessions are paged through.
func (s *paymentServiceImpl) findSession(ctx context.Context, ref string) (string, error) {
	for page := 0; page < s.maxPages; page++ {
		sessions, err := s.thawaniClient.ListSessions(ctx, s.pageSize, page*s.pageSize)
		if err != nil {
			return "", fmt.Errorf("list sessions: %w", err)
		}

		for _, session := range sessions {
			if session.ClientReferenceID == ref {
				return session.SessionID, nil
			}
		}

		if len(sessions) < s.pageSize {
			break
		}
	}

	return "", ErrSessionNotFound
}

func (s *paymentServiceImpl) upsert(
	ctx context.Context,
	ref string,
	sessionID string,
	paid decimal.Decimal,
	draft *model.OrderDraft,
	meta gatewayMeta,
) (*model.Order, error) {
	existing, err := s.orderRepo.FindByOrderID(ctx, ref)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find order: %w", err)
	}

	if existing == nil {
		order := s.newOrder(ref, paid, draft, meta)
		s.stamp(order, sessionID)

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.orderRepo.Create(ctx, tx, order)
		})
		if err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		return order, nil
	}

	if existing.Status == model.OrderStatusCompleted {
		s.logger.Info("payment_reconfirmed", "reference_id", ref, "session_id", sessionID)
	}

	replaceItems := s.backfill(existing, paid, draft, meta)
	s.stamp(existing, sessionID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.Update(ctx, tx, existing, replaceItems)
	})
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return existing, nil
}

func (s *paymentServiceImpl) newOrder(ref string, paid decimal.Decimal, draft *model.OrderDraft, meta gatewayMeta) *model.Order {
	order := &model.Order{
		OrderID:         ref,
		Amount:          paid,
		ShippingFee:     decimal.NewNullDecimal(s.resolveShippingFee(ref, draft, meta)),
		Status:          model.OrderStatusCompleted,
		RemainingAmount: decimal.Zero,
	}

	order.CustomerName = meta.customerName
	order.CustomerPhone = meta.customerPhone
	order.Email = meta.email
	order.Country = meta.country
	order.Subdivision = meta.wilayat
	order.Description = meta.description

	if draft == nil {
		return order
	}

	order.Items = draft.OrderItems()
	order.CustomerName = firstNonBlank(draft.CustomerName, meta.customerName)
	order.CustomerPhone = firstNonBlank(draft.CustomerPhone, meta.customerPhone)
	order.Email = firstNonBlank(draft.Email, meta.email)
	order.Country = firstNonBlank(draft.Country, meta.country)
	order.Subdivision = firstNonBlank(draft.Subdivision, meta.wilayat)
	order.Description = firstNonBlank(draft.Description, meta.description)
	order.DepositMode = draft.DepositMode
	order.RemainingAmount = draft.RemainingAmount
	order.GiftCard = draft.GiftCard

	return order
}

// backfill only fills blanks on an existing order, apart from status and paid
// amount which always take the confirmed values. It reports whether the line
// items were replaced from the draft.
func (s *paymentServiceImpl) backfill(order *model.Order, paid decimal.Decimal, draft *model.OrderDraft, meta gatewayMeta) bool {
	order.Status = model.OrderStatusCompleted
	order.Amount = paid

	var d model.OrderDraft
	if draft != nil {
		d = *draft
	}

	fill(&order.CustomerName, d.CustomerName, meta.customerName)
	fill(&order.CustomerPhone, d.CustomerPhone, meta.customerPhone)
	fill(&order.Email, d.Email, meta.email)
	fill(&order.Country, d.Country, meta.country)
	fill(&order.Subdivision, d.Subdivision, meta.wilayat)
	fill(&order.Description, d.Description, meta.description)

	if !order.ShippingFee.Valid {
		order.ShippingFee = decimal.NewNullDecimal(s.resolveShippingFee(order.OrderID, draft, meta))
	}

	if !order.GiftCard.HasValues() && draft != nil && draft.GiftCard.HasValues() {
		order.GiftCard = draft.GiftCard
	}

	if draft == nil || len(draft.Items) == 0 {
		return false
	}
	order.Items = draft.OrderItems()
	return true
}

func (s *paymentServiceImpl) stamp(order *model.Order, sessionID string) {
	order.PaymentSessionID = sessionID
	if order.PaidAt == nil {
		now := s.now()
		order.PaidAt = &now
	}
}

// resolveShippingFee prefers the draft, then the gateway metadata, then the
// shipping table applied to whatever destination fields survive.
func (s *paymentServiceImpl) resolveShippingFee(ref string, draft *model.OrderDraft, meta gatewayMeta) decimal.Decimal {
	if draft != nil {
		return draft.ShippingFee
	}
	if meta.shippingFee.Valid {
		return meta.shippingFee.Decimal
	}

	dest := pricing.Destination{
		Country:        meta.country,
		GulfCountry:    meta.gulfCountry,
		ShippingMethod: meta.shippingMethod,
	}
	if strings.TrimSpace(dest.Country) == "" && strings.TrimSpace(dest.ShippingMethod) == "" {
		s.logger.Warn("shipping_fee_defaulted",
			"reference_id", ref,
			"fee", s.engine.Rules().DomesticDefaultFee.StringFixed(3),
		)
	}
	return s.engine.ShippingFee(dest)
}

func (s *paymentServiceImpl) adjustStock(ctx context.Context, order *model.Order) {
	if len(order.Items) == 0 {
		return
	}

	claimed, err := s.orderRepo.ClaimStockAdjustment(ctx, order.OrderID)
	if err != nil {
		s.logger.Error("stock_claim_failed", "reference_id", order.OrderID, "error", err)
		return
	}
	if !claimed {
		s.logger.Info("stock_already_adjusted", "reference_id", order.OrderID)
		return
	}

	if errs := s.inventory.DecrementItems(ctx, order.Items); len(errs) > 0 {
		s.logger.Warn("stock_adjustment_incomplete",
			"reference_id", order.OrderID,
			"failed_items", len(errs),
		)
	}
}

// gatewayMeta is the light metadata echoed back by the gateway.
type gatewayMeta struct {
	customerName   string
	customerPhone  string
	email          string
	country        string
	wilayat        string
	gulfCountry    string
	shippingMethod string
	description    string
	shippingFee    decimal.NullDecimal
}

func parseGatewayMeta(raw map[string]string) gatewayMeta {
	m := gatewayMeta{
		customerName:   strings.TrimSpace(raw["customer_name"]),
		customerPhone:  strings.TrimSpace(raw["customer_phone"]),
		email:          strings.TrimSpace(raw["email"]),
		country:        strings.TrimSpace(raw["country"]),
		wilayat:        strings.TrimSpace(raw["wilayat"]),
		gulfCountry:    strings.TrimSpace(firstNonBlank(raw["gulf_country"], raw["gulfCountry"])),
		shippingMethod: strings.TrimSpace(firstNonBlank(raw["shipping_method"], raw["shippingMethod"])),
		description:    strings.TrimSpace(raw["description"]),
	}

	// the checkout placeholder is not an address
	if m.email == defaultMetaEmail {
		m.email = ""
	}

	if fee, err := decimal.NewFromString(strings.TrimSpace(raw["shippingFee"])); err == nil && !fee.IsNegative() {
		m.shippingFee = decimal.NewNullDecimal(fee)
	}

	return m
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func fill(dst *string, candidates ...string) {
	if strings.TrimSpace(*dst) != "" {
		return
	}
	*dst = firstNonBlank(candidates...)
}
