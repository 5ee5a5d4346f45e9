package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"bunah-checkout/internal/cache"
	"bunah-checkout/internal/client"
	"bunah-checkout/internal/dto"
	"bunah-checkout/internal/logging"
	"bunah-checkout/internal/model"
	"bunah-checkout/internal/pricing"
	"bunah-checkout/internal/repository"
	"bunah-checkout/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSession struct {
	summary model.SessionSummary
	detail  model.SessionDetail
}

// fakeThawani keeps sessions in creation order and pages through them like
// the gateway's list endpoint.
type fakeThawani struct {
	mu        sync.Mutex
	sessions  []*fakeSession
	requests  []*model.CreateSessionRequest
	createErr error
	listCalls int
}

func (f *fakeThawani) CreateSession(_ context.Context, req *model.CreateSessionRequest) (*model.SessionCreated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}

	var total int64
	for _, p := range req.Products {
		total += p.UnitAmount * int64(p.Quantity)
	}
	meta := make(map[string]any, len(req.Metadata))
	for k, v := range req.Metadata {
		meta[k] = v
	}

	id := fmt.Sprintf("checkout_%d", len(f.sessions)+1)
	f.sessions = append(f.sessions, &fakeSession{
		summary: model.SessionSummary{SessionID: id, ClientReferenceID: req.ClientReferenceID, PaymentStatus: "unpaid"},
		detail: model.SessionDetail{
			SessionID:         id,
			ClientReferenceID: req.ClientReferenceID,
			PaymentStatus:     "unpaid",
			TotalAmount:       total,
			Metadata:          meta,
		},
	})
	return &model.SessionCreated{SessionID: id, ClientReferenceID: req.ClientReferenceID}, nil
}

func (f *fakeThawani) ListSessions(_ context.Context, limit, skip int) ([]model.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	var out []model.SessionSummary
	for i := skip; i < len(f.sessions) && len(out) < limit; i++ {
		out = append(out, f.sessions[i].summary)
	}
	return out, nil
}

func (f *fakeThawani) GetSession(_ context.Context, sessionID string) (*model.SessionDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sessions {
		if s.detail.SessionID == sessionID {
			d := s.detail
			return &d, nil
		}
	}
	return nil, &client.GatewayError{Op: "get session", StatusCode: http.StatusNotFound, Body: []byte(`{"success":false}`)}
}

func (f *fakeThawani) PaymentLink(sessionID string) string {
	return "https://checkout.test/pay/" + sessionID + "?key=pk"
}

// addSession registers a session that was not created through CreateSession,
// e.g. one whose draft never reached this process.
func (f *fakeThawani) addSession(ref string, status string, total int64, meta map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := fmt.Sprintf("checkout_%d", len(f.sessions)+1)
	f.sessions = append(f.sessions, &fakeSession{
		summary: model.SessionSummary{SessionID: id, ClientReferenceID: ref, PaymentStatus: status},
		detail: model.SessionDetail{
			SessionID:         id,
			ClientReferenceID: ref,
			PaymentStatus:     status,
			TotalAmount:       total,
			MetaData:          meta,
		},
	})
}

func (f *fakeThawani) markPaid(ref string, total int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sessions {
		if s.detail.ClientReferenceID == ref {
			s.summary.PaymentStatus = model.PaymentStatusPaid
			s.detail.PaymentStatus = model.PaymentStatusPaid
			s.detail.TotalAmount = total
		}
	}
}

type harness struct {
	db        *gorm.DB
	gateway   *fakeThawani
	drafts    *cache.MemoryStore
	engine    *pricing.Engine
	orderRepo repository.OrderRepository
	stockRepo repository.StockRepository
	checkout  CheckoutService
	payment   PaymentService
	orders    OrderService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewDB(t)
	logger := logging.Discard()
	gateway := &fakeThawani{}
	drafts := cache.NewMemoryStore(0)
	engine := pricing.NewEngine(pricing.DefaultRules())

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)

	var (
		mu  sync.Mutex
		seq int
	)
	newID := func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("ref-%03d", seq)
	}

	inventory := NewInventoryService(stockRepo, 4, logger)

	return &harness{
		db:        db,
		gateway:   gateway,
		drafts:    drafts,
		engine:    engine,
		orderRepo: orderRepo,
		stockRepo: stockRepo,
		checkout: NewCheckoutService(engine, drafts, gateway,
			"https://shop.test/SuccessRedirect", "https://shop.test/cancel", newID, logger),
		payment: NewPaymentService(db, gateway, orderRepo, drafts, engine, inventory, 2, 5, logger),
		orders:  NewOrderService(orderRepo, productRepo),
	}
}

func (h *harness) seedProduct(t *testing.T, p *model.Product) {
	t.Helper()
	if p.Name == "" {
		p.Name = "product " + p.ID
	}
	require.NoError(t, repository.NewProductRepository(h.db).Create(context.Background(), p))
}

func (h *harness) stock(t *testing.T, id string) int {
	t.Helper()
	qty, err := h.stockRepo.Get(context.Background(), model.ParseProductRef(id))
	require.NoError(t, err)
	return qty
}

func shaylaCart() *dto.CheckoutRequest {
	return &dto.CheckoutRequest{
		Products: []*dto.CheckoutItem{{
			ID:           "p1",
			Name:         "شيلة سادة",
			Price:        decimal.NewFromInt(10),
			Quantity:     3,
			Category:     pricing.CategoryPlainShayla,
			Image:        dto.Images{"a.jpg", "b.jpg"},
			Measurements: map[string]any{"length": "52"},
			GiftCard:     &model.GiftCardInput{To: "  Mariam "},
		}},
		Email:          "buyer@example.com",
		CustomerName:   "Salim",
		CustomerPhone:  "+96890000000",
		Country:        "عُمان",
		Wilayat:        "مسقط",
		ShippingMethod: pricing.ShippingToHome,
		GiftCard:       &model.GiftCardInput{From: " ", Note: "  "},
	}
}
