package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bunah-checkout/internal/config"
	"bunah-checkout/internal/model"
)

type ThawaniClient interface {
	CreateSession(ctx context.Context, req *model.CreateSessionRequest) (*model.SessionCreated, error)
	ListSessions(ctx context.Context, limit, skip int) ([]model.SessionSummary, error)
	GetSession(ctx context.Context, sessionID string) (*model.SessionDetail, error)
	PaymentLink(sessionID string) string
}

// GatewayError reports a failed round trip to the payment gateway: transport
// failures and timeouts (StatusCode 0) as well as non-2xx answers.
type GatewayError struct {
	Op         string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("thawani %s: %v", e.Op, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("thawani %s: status=%d body=%s", e.Op, e.StatusCode, string(e.Body))
	default:
		return fmt.Sprintf("thawani %s: %s", e.Op, string(e.Body))
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Details returns the upstream body for diagnostics, decoded when it is JSON.
func (e *GatewayError) Details() any {
	if len(e.Body) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return nil
	}
	var v any
	if err := json.Unmarshal(e.Body, &v); err == nil {
		return v
	}
	return string(e.Body)
}

type thawaniClientImpl struct {
	httpClient     *http.Client
	baseApiURL     string
	apiKey         string
	checkoutHost   string
	publishableKey string
}

func NewThawaniClient(cfg *config.Thawani) ThawaniClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &thawaniClientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseApiURL:     strings.TrimRight(cfg.BaseApiURL, "/"),
		apiKey:         cfg.APIKey,
		checkoutHost:   strings.TrimRight(cfg.CheckoutHost, "/"),
		publishableKey: cfg.PublishableKey,
	}
}

func (c *thawaniClientImpl) CreateSession(ctx context.Context, req *model.CreateSessionRequest) (*model.SessionCreated, error) {
	var created model.SessionCreated
	if err := c.do(ctx, "create session", http.MethodPost, "/checkout/session", req, &created); err != nil {
		return nil, err
	}

	if created.SessionID == "" {
		return nil, &GatewayError{Op: "create session", Body: []byte(`"no session_id returned from thawani"`)}
	}
	return &created, nil
}

func (c *thawaniClientImpl) ListSessions(ctx context.Context, limit, skip int) ([]model.SessionSummary, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))

	var sessions []model.SessionSummary
	if err := c.do(ctx, "list sessions", http.MethodGet, "/checkout/session?"+q.Encode(), nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *thawaniClientImpl) GetSession(ctx context.Context, sessionID string) (*model.SessionDetail, error) {
	var detail model.SessionDetail
	path := "/checkout/session/" + url.PathEscape(sessionID)
	if err := c.do(ctx, "get session", http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *thawaniClientImpl) PaymentLink(sessionID string) string {
	return fmt.Sprintf("%s/pay/%s?key=%s", c.checkoutHost, sessionID, url.QueryEscape(c.publishableKey))
}

func (c *thawaniClientImpl) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("thawani-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Body: raw}
	}

	var envelope model.ThawaniResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Body: raw, Err: fmt.Errorf("decode thawani response: %w", err)}
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Body: raw, Err: fmt.Errorf("decode thawani data: %w", err)}
	}
	return nil
}
