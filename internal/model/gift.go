package model

import "strings"

// GiftCard is always fully populated when present; a nil *GiftCard means the
// buyer left no gift details.
type GiftCard struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

// GiftCardInput is the free-form gift payload accepted from clients.
type GiftCardInput struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

// NormalizeGiftCard trims every field and returns nil unless at least one of
// them is non-empty.
func NormalizeGiftCard(raw *GiftCardInput) *GiftCard {
	if raw == nil {
		return nil
	}

	gc := &GiftCard{
		From:  strings.TrimSpace(raw.From),
		To:    strings.TrimSpace(raw.To),
		Phone: strings.TrimSpace(raw.Phone),
		Note:  strings.TrimSpace(raw.Note),
	}
	if !gc.HasValues() {
		return nil
	}
	return gc
}

func (gc *GiftCard) HasValues() bool {
	if gc == nil {
		return false
	}
	return strings.TrimSpace(gc.From) != "" ||
		strings.TrimSpace(gc.To) != "" ||
		strings.TrimSpace(gc.Phone) != "" ||
		strings.TrimSpace(gc.Note) != ""
}
