package pricing

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	CategoryFrenchShayla = "الشيلات فرنسية"
	CategoryPlainShayla  = "الشيلات سادة"

	GulfRegion        = "دول الخليج"
	GulfCountryUAE    = "الإمارات"
	ShippingToOffice  = "المكتب"
	ShippingToHome    = "المنزل"
	DepositLineName   = "دفعة مقدم"
	ShippingLineName  = "رسوم الشحن"
	DefaultLineName   = "منتج"
	defaultMinorUnits = 1000
)

// Rules is the merchant's pricing configuration. All amounts are in major
// units (OMR).
type Rules struct {
	PairCategories     []string
	PairRate           decimal.Decimal
	Deposit            decimal.Decimal
	MinUnitPrice       decimal.Decimal
	MinChargeMinor     int64
	MinorPerMajor      int64
	GulfRegion         string
	GulfCountryFees    map[string]decimal.Decimal
	GulfDefaultFee     decimal.Decimal
	DomesticMethodFees map[string]decimal.Decimal
	DomesticDefaultFee decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		PairCategories: []string{CategoryFrenchShayla, CategoryPlainShayla},
		PairRate:       decimal.NewFromInt(1),
		Deposit:        decimal.NewFromInt(10),
		MinUnitPrice:   decimal.RequireFromString("0.1"),
		MinChargeMinor: 100,
		MinorPerMajor:  defaultMinorUnits,
		GulfRegion:     GulfRegion,
		GulfCountryFees: map[string]decimal.Decimal{
			GulfCountryUAE: decimal.NewFromInt(4),
		},
		GulfDefaultFee: decimal.NewFromInt(5),
		DomesticMethodFees: map[string]decimal.Decimal{
			ShippingToOffice: decimal.NewFromInt(1),
			ShippingToHome:   decimal.NewFromInt(2),
		},
		DomesticDefaultFee: decimal.NewFromInt(2),
	}
}

type rulesFile struct {
	PairCategories []string `yaml:"pair_categories"`
	PairRate       *string  `yaml:"pair_rate"`
	Deposit        *string  `yaml:"deposit"`
	MinUnitPrice   *string  `yaml:"min_unit_price"`
	MinChargeMinor *int64   `yaml:"min_charge_minor"`
	MinorPerMajor  *int64   `yaml:"minor_per_major"`
	Shipping       struct {
		GulfRegion      string            `yaml:"gulf_region"`
		GulfCountries   map[string]string `yaml:"gulf_countries"`
		GulfDefault     *string           `yaml:"gulf_default"`
		DomesticMethods map[string]string `yaml:"domestic_methods"`
		DomesticDefault *string           `yaml:"domestic_default"`
	} `yaml:"shipping"`
}

// LoadRules reads a YAML rules file and overlays it on DefaultRules. An empty
// path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read pricing rules: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return rules, fmt.Errorf("decode pricing rules: %w", err)
	}

	if len(f.PairCategories) > 0 {
		rules.PairCategories = f.PairCategories
	}
	if f.MinChargeMinor != nil {
		rules.MinChargeMinor = *f.MinChargeMinor
	}
	if f.MinorPerMajor != nil {
		if *f.MinorPerMajor <= 0 {
			return rules, fmt.Errorf("minor_per_major must be positive")
		}
		rules.MinorPerMajor = *f.MinorPerMajor
	}
	if f.Shipping.GulfRegion != "" {
		rules.GulfRegion = f.Shipping.GulfRegion
	}

	amounts := []struct {
		name string
		raw  *string
		dst  *decimal.Decimal
	}{
		{"pair_rate", f.PairRate, &rules.PairRate},
		{"deposit", f.Deposit, &rules.Deposit},
		{"min_unit_price", f.MinUnitPrice, &rules.MinUnitPrice},
		{"shipping.gulf_default", f.Shipping.GulfDefault, &rules.GulfDefaultFee},
		{"shipping.domestic_default", f.Shipping.DomesticDefault, &rules.DomesticDefaultFee},
	}
	for _, a := range amounts {
		if a.raw == nil {
			continue
		}
		v, err := decimal.NewFromString(*a.raw)
		if err != nil {
			return rules, fmt.Errorf("parse %s: %w", a.name, err)
		}
		*a.dst = v
	}

	if len(f.Shipping.GulfCountries) > 0 {
		fees, err := parseFeeTable(f.Shipping.GulfCountries)
		if err != nil {
			return rules, fmt.Errorf("parse shipping.gulf_countries: %w", err)
		}
		rules.GulfCountryFees = fees
	}
	if len(f.Shipping.DomesticMethods) > 0 {
		fees, err := parseFeeTable(f.Shipping.DomesticMethods)
		if err != nil {
			return rules, fmt.Errorf("parse shipping.domestic_methods: %w", err)
		}
		rules.DomesticMethodFees = fees
	}

	return rules, nil
}

func parseFeeTable(raw map[string]string) (map[string]decimal.Decimal, error) {
	fees := make(map[string]decimal.Decimal, len(raw))
	for k, v := range raw {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		fees[k] = d
	}
	return fees, nil
}
