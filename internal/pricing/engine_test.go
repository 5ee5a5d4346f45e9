package pricing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuote_EmptyCart(t *testing.T) {
	e := NewEngine(DefaultRules())

	_, err := e.Quote(nil, Destination{}, false)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = e.Quote([]CartItem{}, Destination{}, true)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPairDiscount(t *testing.T) {
	e := NewEngine(DefaultRules())

	tests := []struct {
		name     string
		item     CartItem
		expected string
	}{
		{"paired qty 5 counts two pairs", CartItem{Category: CategoryPlainShayla, Quantity: 5}, "2"},
		{"paired qty 1", CartItem{Category: CategoryFrenchShayla, Quantity: 1}, "0"},
		{"paired qty 4", CartItem{Category: CategoryFrenchShayla, Quantity: 4}, "2"},
		{"other category", CartItem{Category: "قهوة", Quantity: 6}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, d(tt.expected).Equal(e.PairDiscount(tt.item)), "got %s", e.PairDiscount(tt.item))
		})
	}
}

func TestShippingFee(t *testing.T) {
	e := NewEngine(DefaultRules())

	tests := []struct {
		name     string
		dest     Destination
		expected int64
	}{
		{"gulf uae", Destination{Country: GulfRegion, GulfCountry: GulfCountryUAE}, 4},
		{"gulf other", Destination{Country: GulfRegion, GulfCountry: "قطر"}, 5},
		{"domestic office", Destination{Country: "عمان", ShippingMethod: ShippingToOffice}, 1},
		{"domestic home", Destination{Country: "عمان", ShippingMethod: ShippingToHome}, 2},
		{"domestic default", Destination{Country: "عمان"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, decimal.NewFromInt(tt.expected).Equal(e.ShippingFee(tt.dest)))
		})
	}
}

func TestQuote_DepositModeIgnoresCart(t *testing.T) {
	e := NewEngine(DefaultRules())

	carts := [][]CartItem{
		{{Name: "a", Price: d("3.5"), Quantity: 1}},
		{{Name: "b", Price: d("120"), Quantity: 7, Category: CategoryPlainShayla}, {Name: "c", Price: d("0.2"), Quantity: 1}},
	}
	for _, cart := range carts {
		q, err := e.Quote(cart, Destination{Country: GulfRegion}, true)
		require.NoError(t, err)

		assert.True(t, d("10").Equal(q.AmountToCharge))
		require.Len(t, q.Lines, 1)
		assert.Equal(t, DepositLineName, q.Lines[0].Name)
		assert.Equal(t, int64(10000), q.Lines[0].UnitAmount)
		assert.True(t, decimal.Max(decimal.Zero, q.OriginalTotal.Sub(d("10"))).Equal(q.RemainingAmount))
	}
}

func TestQuote_PairedItemEndToEnd(t *testing.T) {
	e := NewEngine(DefaultRules())

	q, err := e.Quote([]CartItem{
		{ProductID: "p1", Name: "شيلة", Price: d("10"), Quantity: 3, Category: CategoryPlainShayla},
	}, Destination{Country: "عمان", ShippingMethod: ShippingToHome}, false)
	require.NoError(t, err)

	assert.True(t, d("30").Equal(q.Subtotal))
	assert.True(t, d("1").Equal(q.PairDiscount))
	assert.True(t, d("29").Equal(q.SubtotalAfterDiscount))
	assert.True(t, d("2").Equal(q.ShippingFee))
	assert.True(t, d("31").Equal(q.AmountToCharge))
	assert.True(t, q.RemainingAmount.IsZero())

	require.Len(t, q.Lines, 3)
	assert.Equal(t, Line{Name: "شيلة", Quantity: 2, UnitAmount: 9667}, q.Lines[0])
	assert.Equal(t, Line{Name: "شيلة", Quantity: 1, UnitAmount: 9666}, q.Lines[1])
	assert.Equal(t, ShippingLineName, q.Lines[2].Name)
	assert.Equal(t, int64(2000), q.Lines[2].UnitAmount)
}

func TestQuote_OddPairedQuantitiesReconcile(t *testing.T) {
	e := NewEngine(DefaultRules())

	for _, category := range []string{CategoryPlainShayla, CategoryFrenchShayla} {
		for _, qty := range []int{3, 5, 7, 9, 11, 13} {
			t.Run(fmt.Sprintf("%s x%d", category, qty), func(t *testing.T) {
				q, err := e.Quote([]CartItem{
					{Name: "x", Price: d("10"), Quantity: qty, Category: category},
				}, Destination{Country: "عمان", ShippingMethod: ShippingToHome}, false)
				require.NoError(t, err)

				var sum int64
				units := 0
				for _, l := range q.Lines {
					sum += l.UnitAmount * int64(l.Quantity)
					if l.Name != ShippingLineName {
						units += l.Quantity
					}
				}
				assert.Equal(t, qty, units)
				expected := q.SubtotalAfterDiscount.Add(q.ShippingFee).Mul(d("1000")).IntPart()
				assert.InDelta(t, expected, sum, 1)
			})
		}
	}
}

func TestQuote_EvenSplitKeepsSingleLine(t *testing.T) {
	e := NewEngine(DefaultRules())

	q, err := e.Quote([]CartItem{
		{Name: "x", Price: d("10"), Quantity: 4, Category: CategoryPlainShayla},
	}, Destination{}, false)
	require.NoError(t, err)

	require.Len(t, q.Lines, 2)
	assert.Equal(t, Line{Name: "x", Quantity: 4, UnitAmount: 9500}, q.Lines[0])
}

func TestQuote_DistributedLinesReconcileWithTotal(t *testing.T) {
	e := NewEngine(DefaultRules())

	items := []CartItem{
		{Name: "a", Price: d("10"), Quantity: 5, Category: CategoryFrenchShayla},
		{Name: "b", Price: d("4.25"), Quantity: 2, Category: CategoryPlainShayla},
		{Name: "c", Price: d("7.1"), Quantity: 1},
	}
	q, err := e.Quote(items, Destination{Country: GulfRegion, GulfCountry: GulfCountryUAE}, false)
	require.NoError(t, err)

	var sum int64
	for _, l := range q.Lines {
		sum += l.UnitAmount * int64(l.Quantity)
	}
	expected := q.SubtotalAfterDiscount.Add(q.ShippingFee).Mul(d("1000")).IntPart()
	assert.InDelta(t, expected, sum, 1)
	assert.True(t, q.AmountToCharge.Equal(q.SubtotalAfterDiscount.Add(q.ShippingFee)))
}

func TestQuote_UnitPriceFloorAndDefaultName(t *testing.T) {
	e := NewEngine(DefaultRules())

	q, err := e.Quote([]CartItem{
		{Price: d("0.5"), Quantity: 2, Category: CategoryPlainShayla},
	}, Destination{}, false)
	require.NoError(t, err)

	assert.Equal(t, DefaultLineName, q.Lines[0].Name)
	assert.Equal(t, int64(100), q.Lines[0].UnitAmount)
	assert.True(t, q.SubtotalAfterDiscount.IsZero())
}

func TestToMinor(t *testing.T) {
	e := NewEngine(DefaultRules())

	assert.Equal(t, int64(100), e.ToMinor(decimal.Zero))
	assert.Equal(t, int64(100), e.ToMinor(d("0.04")))
	assert.Equal(t, int64(1235), e.ToMinor(d("1.2345")))
	assert.Equal(t, int64(31000), e.ToMinor(d("31")))
	assert.True(t, d("31").Equal(e.FromMinor(31000)))
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.True(t, d("10").Equal(rules.Deposit))

	path := filepath.Join(t.TempDir(), "pricing.yaml")
	content := `
pair_categories: ["حجاب"]
pair_rate: "0.5"
deposit: "7.5"
shipping:
  gulf_countries:
    "قطر": "6"
  domestic_methods:
    "المكتب": "1.5"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err = LoadRules(path)
	require.NoError(t, err)

	e := NewEngine(rules)
	assert.True(t, d("7.5").Equal(rules.Deposit))
	assert.True(t, d("0.5").Equal(e.PairDiscount(CartItem{Category: "حجاب", Quantity: 3})))
	assert.True(t, e.PairDiscount(CartItem{Category: CategoryPlainShayla, Quantity: 3}).IsZero())
	assert.True(t, d("6").Equal(e.ShippingFee(Destination{Country: GulfRegion, GulfCountry: "قطر"})))
	assert.True(t, d("5").Equal(e.ShippingFee(Destination{Country: GulfRegion, GulfCountry: GulfCountryUAE})))
	assert.True(t, d("1.5").Equal(e.ShippingFee(Destination{ShippingMethod: ShippingToOffice})))
}

func TestParseRules_InvalidAmount(t *testing.T) {
	_, err := ParseRules([]byte(`deposit: "ten"`))
	require.Error(t, err)
}
