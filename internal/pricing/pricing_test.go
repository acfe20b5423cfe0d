package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"pharmasales/m/domain"
)

func snapshot(productID int64, price string) *domain.InventorySnapshot {
	var p decimal.NullDecimal
	if price != "" {
		p = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	return &domain.InventorySnapshot{
		ID:    1,
		Batch: &domain.BatchSnapshot{ID: 1, Product: &domain.ProductSnapshot{ID: productID, Price: p}},
	}
}

func TestMethodForCycle(t *testing.T) {
	want := map[int64]domain.PricingMethod{
		0:  domain.PricingFIFO,
		1:  domain.PricingLIFO,
		2:  domain.PricingWeightedAverage,
		3:  domain.PricingLILO,
		4:  domain.PricingLastPurchase,
		10: domain.PricingFIFO,
		12: domain.PricingWeightedAverage,
		99: domain.PricingLastPurchase,
	}
	for id, method := range want {
		if got := MethodFor(id); got != method {
			t.Errorf("MethodFor(%d) = %s, want %s", id, got, method)
		}
		if again := MethodFor(id); again != MethodFor(id) {
			t.Errorf("MethodFor(%d) is not stable", id)
		}
	}
}

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name   string
		method domain.PricingMethod
		base   string
		want   string
	}{
		{"fifo", domain.PricingFIFO, "1000", "1000"},
		{"lifo", domain.PricingLIFO, "1234.5", "1234.5"},
		{"last purchase", domain.PricingLastPurchase, "799.99", "799.99"},
		{"weighted average", domain.PricingWeightedAverage, "1000", "1050"},
		{"weighted average half up", domain.PricingWeightedAverage, "10.10", "10.61"},
		{"lilo", domain.PricingLILO, "1000", "980"},
		{"lilo half up", domain.PricingLILO, "10.25", "10.05"},
		{"missing price", domain.PricingFIFO, "", "1000"},
		{"missing price weighted", domain.PricingWeightedAverage, "", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnitPrice(snapshot(1, tt.base), tt.method, 1)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("UnitPrice = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnitPriceIncompleteSnapshot(t *testing.T) {
	cases := []*domain.InventorySnapshot{
		{ID: 1},
		{ID: 1, Batch: &domain.BatchSnapshot{ID: 1}},
	}
	for _, snap := range cases {
		if _, err := UnitPrice(snap, domain.PricingFIFO, 1); !errors.Is(err, domain.ErrIncompleteInventoryData) {
			t.Errorf("got %v, want ErrIncompleteInventoryData", err)
		}
		if _, _, err := Quote(snap, 1); !errors.Is(err, domain.ErrIncompleteInventoryData) {
			t.Errorf("Quote: got %v", err)
		}
	}
}

func TestQuoteUsesProductID(t *testing.T) {
	method, price, err := Quote(snapshot(12, "200"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if method != domain.PricingWeightedAverage || !price.Equal(decimal.NewFromInt(210)) {
		t.Errorf("Quote = %s %s", method, price)
	}
}

func TestItemTotal(t *testing.T) {
	unit := decimal.RequireFromString("10.61")
	if got := ItemTotal(unit, 3); !got.Equal(decimal.RequireFromString("31.83")) {
		t.Errorf("ItemTotal = %s", got)
	}
	if got := ItemTotal(unit, 0); !got.IsZero() {
		t.Errorf("ItemTotal(0) = %s", got)
	}
}

func TestIsPriceReasonable(t *testing.T) {
	base := decimal.NewFromInt(1000)
	tests := []struct {
		price string
		want  bool
	}{
		{"500", true},
		{"2000", true},
		{"1050", true},
		{"499.99", false},
		{"2000.01", false},
	}
	for _, tt := range tests {
		if got := IsPriceReasonable(decimal.RequireFromString(tt.price), base); got != tt.want {
			t.Errorf("IsPriceReasonable(%s) = %v, want %v", tt.price, got, tt.want)
		}
	}
}
