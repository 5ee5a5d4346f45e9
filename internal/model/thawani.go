package model

import (
	"encoding/json"
	"fmt"
)

const (
	PaymentStatusPaid = "paid"
)

type SessionProduct struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"` // baisa
}

type CreateSessionRequest struct {
	ClientReferenceID string            `json:"client_reference_id"`
	Mode              string            `json:"mode"`
	Products          []SessionProduct  `json:"products"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
	Metadata          map[string]string `json:"metadata"`
}

type SessionCreated struct {
	SessionID         string `json:"session_id"`
	ClientReferenceID string `json:"client_reference_id"`
}

type SessionSummary struct {
	SessionID         string `json:"session_id"`
	ClientReferenceID string `json:"client_reference_id"`
	PaymentStatus     string `json:"payment_status"`
}

type SessionDetail struct {
	SessionID         string         `json:"session_id"`
	ClientReferenceID string         `json:"client_reference_id"`
	PaymentStatus     string         `json:"payment_status"`
	TotalAmount       int64          `json:"total_amount"` // baisa
	Metadata          map[string]any `json:"metadata"`
	MetaData          map[string]any `json:"meta_data"`
}

// Meta returns whichever metadata field the gateway populated.
func (s *SessionDetail) Meta() map[string]string {
	raw := s.Metadata
	if len(raw) == 0 {
		raw = s.MetaData
	}

	meta := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		meta[k] = fmt.Sprint(v)
	}
	return meta
}

// ThawaniResponse is the envelope wrapped around every gateway payload.
type ThawaniResponse struct {
	Success     bool            `json:"success"`
	Code        int             `json:"code"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
}
