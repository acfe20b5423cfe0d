package pricing

import (
	"github.com/shopspring/decimal"

	"pharmasales/m/domain"
)

var (
	// DefaultPrice is used when the catalog has no base price for a product.
	DefaultPrice = decimal.NewFromInt(1000)

	weightedAverageFactor = decimal.RequireFromString("1.05")
	liloFactor            = decimal.RequireFromString("0.98")

	minReasonableFactor = decimal.RequireFromString("0.5")
	maxReasonableFactor = decimal.RequireFromString("2.0")
)

// methodCycle is indexed by productID % 5.
var methodCycle = [5]domain.PricingMethod{
	domain.PricingFIFO,
	domain.PricingLIFO,
	domain.PricingWeightedAverage,
	domain.PricingLILO,
	domain.PricingLastPurchase,
}

// MethodFor picks the valuation method for a product.
// TODO: replace the id%5 cycle with a per-product pricing method from the catalog.
func MethodFor(productID int64) domain.PricingMethod {
	idx := productID % int64(len(methodCycle))
	if idx < 0 {
		idx = -idx
	}
	return methodCycle[idx]
}

// SelectMethod picks the method for the product referenced by a snapshot.
func SelectMethod(snap *domain.InventorySnapshot) (domain.PricingMethod, error) {
	product := snap.Product()
	if product == nil {
		return "", domain.ErrIncompleteInventoryData
	}
	return MethodFor(product.ID), nil
}

// UnitPrice derives the unit price of a snapshot's product under method.
// Quantity does not influence any of the current methods.
func UnitPrice(snap *domain.InventorySnapshot, method domain.PricingMethod, quantity int64) (decimal.Decimal, error) {
	product := snap.Product()
	if product == nil {
		return decimal.Zero, domain.ErrIncompleteInventoryData
	}

	base, ok := basePrice(product)
	if !ok {
		return DefaultPrice, nil
	}

	switch method {
	case domain.PricingWeightedAverage:
		return base.Mul(weightedAverageFactor).Round(2), nil
	case domain.PricingLILO:
		return base.Mul(liloFactor).Round(2), nil
	default:
		return base, nil
	}
}

// Quote selects the method for a snapshot and prices it in one step.
func Quote(snap *domain.InventorySnapshot, quantity int64) (domain.PricingMethod, decimal.Decimal, error) {
	method, err := SelectMethod(snap)
	if err != nil {
		return "", decimal.Zero, err
	}
	price, err := UnitPrice(snap, method, quantity)
	if err != nil {
		return "", decimal.Zero, err
	}
	return method, price, nil
}

// ItemTotal is unit × quantity, or zero for a non-positive quantity.
func ItemTotal(unit decimal.Decimal, quantity int64) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return unit.Mul(decimal.NewFromInt(quantity))
}

// IsPriceReasonable reports whether calculated lies within [0.5×base, 2×base].
func IsPriceReasonable(calculated, base decimal.Decimal) bool {
	lo := base.Mul(minReasonableFactor)
	hi := base.Mul(maxReasonableFactor)
	return calculated.GreaterThanOrEqual(lo) && calculated.LessThanOrEqual(hi)
}

// basePrice treats a missing or negative catalog price as absent.
func basePrice(product *domain.ProductSnapshot) (decimal.Decimal, bool) {
	if !product.Price.Valid || product.Price.Decimal.IsNegative() {
		return decimal.Zero, false
	}
	return product.Price.Decimal, true
}
