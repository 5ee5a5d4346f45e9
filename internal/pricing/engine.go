package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("invalid or empty products array")

type CartItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Category  string
}

type Destination struct {
	Country        string
	GulfCountry    string
	ShippingMethod string
}

// Line is a gateway-facing line item priced in minor units.
type Line struct {
	Name       string
	Quantity   int
	UnitAmount int64
}

type Quote struct {
	Subtotal              decimal.Decimal
	PairDiscount          decimal.Decimal
	SubtotalAfterDiscount decimal.Decimal
	ShippingFee           decimal.Decimal
	OriginalTotal         decimal.Decimal
	AmountToCharge        decimal.Decimal
	RemainingAmount       decimal.Decimal
	DepositMode           bool
	Lines                 []Line
}

type Engine struct {
	rules    Rules
	paired   map[string]struct{}
	minorMul decimal.Decimal
}

func NewEngine(rules Rules) *Engine {
	paired := make(map[string]struct{}, len(rules.PairCategories))
	for _, c := range rules.PairCategories {
		paired[c] = struct{}{}
	}
	if rules.MinorPerMajor <= 0 {
		rules.MinorPerMajor = defaultMinorUnits
	}
	return &Engine{
		rules:    rules,
		paired:   paired,
		minorMul: decimal.NewFromInt(rules.MinorPerMajor),
	}
}

func (e *Engine) Rules() Rules { return e.rules }

// PairDiscount is floor(quantity/2) × PairRate for paired categories.
func (e *Engine) PairDiscount(item CartItem) decimal.Decimal {
	if _, ok := e.paired[item.Category]; !ok || item.Quantity < 2 {
		return decimal.Zero
	}
	pairs := int64(item.Quantity / 2)
	return e.rules.PairRate.Mul(decimal.NewFromInt(pairs))
}

func (e *Engine) IsGulf(country string) bool {
	return strings.TrimSpace(country) == e.rules.GulfRegion
}

func (e *Engine) ShippingFee(dest Destination) decimal.Decimal {
	if e.IsGulf(dest.Country) {
		if fee, ok := e.rules.GulfCountryFees[strings.TrimSpace(dest.GulfCountry)]; ok {
			return fee
		}
		return e.rules.GulfDefaultFee
	}
	if fee, ok := e.rules.DomesticMethodFees[strings.TrimSpace(dest.ShippingMethod)]; ok {
		return fee
	}
	return e.rules.DomesticDefaultFee
}

// ToMinor rounds to the nearest minor unit, never below MinChargeMinor.
func (e *Engine) ToMinor(amount decimal.Decimal) int64 {
	minor := amount.Mul(e.minorMul).Round(0).IntPart()
	if minor < e.rules.MinChargeMinor {
		return e.rules.MinChargeMinor
	}
	return minor
}

func (e *Engine) FromMinor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(e.minorMul)
}

func (e *Engine) Quote(items []CartItem, dest Destination, depositMode bool) (*Quote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		discount = discount.Add(e.PairDiscount(it))
	}

	afterDiscount := decimal.Max(decimal.Zero, subtotal.Sub(discount))
	shipping := e.ShippingFee(dest)
	originalTotal := afterDiscount.Add(shipping)

	q := &Quote{
		Subtotal:              subtotal,
		PairDiscount:          discount,
		SubtotalAfterDiscount: afterDiscount,
		ShippingFee:           shipping,
		OriginalTotal:         originalTotal,
		RemainingAmount:       decimal.Zero,
		DepositMode:           depositMode,
	}

	if depositMode {
		q.AmountToCharge = e.rules.Deposit
		q.RemainingAmount = decimal.Max(decimal.Zero, originalTotal.Sub(e.rules.Deposit))
		q.Lines = []Line{{Name: DepositLineName, Quantity: 1, UnitAmount: e.ToMinor(e.rules.Deposit)}}
		return q, nil
	}

	q.AmountToCharge = originalTotal
	q.Lines = make([]Line, 0, len(items)+1)
	for _, it := range items {
		q.Lines = append(q.Lines, e.distribute(it)...)
	}
	q.Lines = append(q.Lines, Line{Name: ShippingLineName, Quantity: 1, UnitAmount: e.ToMinor(shipping)})

	return q, nil
}

// distribute folds an item's own pair discount into its unit price. When the
// discounted line total does not divide evenly, the last unit carries the
// rounding remainder so the lines sum to the line total in minor units.
func (e *Engine) distribute(it CartItem) []Line {
	qty := it.Quantity
	if qty < 1 {
		qty = 1
	}
	name := strings.TrimSpace(it.Name)
	if name == "" {
		name = DefaultLineName
	}

	n := decimal.NewFromInt(int64(qty))
	lineTotal := it.Price.Mul(n).Sub(e.PairDiscount(it))
	unit := decimal.Max(e.rules.MinUnitPrice, lineTotal.Div(n))
	unitMinor := e.ToMinor(unit)
	if qty == 1 {
		return []Line{{Name: name, Quantity: 1, UnitAmount: unitMinor}}
	}

	lastMinor := lineTotal.Mul(e.minorMul).Round(0).IntPart() - unitMinor*int64(qty-1)
	if lastMinor == unitMinor || lastMinor < e.ToMinor(e.rules.MinUnitPrice) {
		// even split, or the unit floor already lifted the line above its total
		return []Line{{Name: name, Quantity: qty, UnitAmount: unitMinor}}
	}
	return []Line{
		{Name: name, Quantity: qty - 1, UnitAmount: unitMinor},
		{Name: name, Quantity: 1, UnitAmount: lastMinor},
	}
}
