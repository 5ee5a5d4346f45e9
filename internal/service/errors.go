package service

import (
	"errors"

	"bunah-checkout/internal/pricing"
)

var (
	ErrEmptyCart            = pricing.ErrEmptyCart
	ErrMissingReference     = errors.New("client_reference_id is required")
	ErrMissingStatus        = errors.New("status is required")
	ErrSessionNotFound      = errors.New("session not found")
	ErrPaymentNotSuccessful = errors.New("payment not successful or session not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
)
