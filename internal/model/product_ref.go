package model

import (
	"strings"

	"github.com/google/uuid"
)

type ProductRefKind int

const (
	ProductRefNone ProductRefKind = iota
	ProductRefWellFormed
	ProductRefOpaque
)

// ProductRef identifies a product either by a well-formed id (uuid) or by an
// opaque legacy string that is matched as-is.
type ProductRef struct {
	kind ProductRefKind
	id   uuid.UUID
	raw  string
}

func ParseProductRef(s string) ProductRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return ProductRef{}
	}
	if id, err := uuid.Parse(s); err == nil {
		return ProductRef{kind: ProductRefWellFormed, id: id, raw: s}
	}
	return ProductRef{kind: ProductRefOpaque, raw: s}
}

func (r ProductRef) Kind() ProductRefKind { return r.kind }

func (r ProductRef) IsZero() bool { return r.kind == ProductRefNone }

// Key is the value matched against products.id.
func (r ProductRef) Key() string {
	switch r.kind {
	case ProductRefWellFormed:
		return r.id.String()
	case ProductRefOpaque:
		return r.raw
	default:
		return ""
	}
}

func (r ProductRef) String() string { return r.raw }
